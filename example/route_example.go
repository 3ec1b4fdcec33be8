package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/midiroute/internal/logger"
	"github.com/leandrodaf/midiroute/sdk/contracts"
	"github.com/leandrodaf/midiroute/sdk/midiroute"
)

func main() {
	log := logger.NewZapLogger()

	router, err := midiroute.NewRouter(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithClientName("midiroute example"),
	)
	if err != nil {
		log.Error("Failed to initialize MIDI router", log.Field().Error("error", err))
		return
	}
	defer router.Close()

	devices, err := router.ListDevices()
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	for _, device := range devices {
		fmt.Printf("%s (transmit=%v receive=%v)\n",
			device.Name(), device.MaxTransmitters() != 0, device.MaxReceivers() != 0)
	}

	query := "USB"
	if len(os.Args) > 1 {
		query = os.Args[1]
	}

	input, err := router.FindInput(query)
	if err != nil {
		log.Error("No matching MIDI input", log.Field().String("query", query))
		return
	}

	binding, err := router.AddReceiver(input, func(data []byte, timestampMillis int64) {
		fmt.Printf("[%dms] % X\n", timestampMillis, data)
	})
	if err != nil {
		log.Error("Failed to register receiver", log.Field().Error("error", err))
		return
	}
	defer router.RemoveReceiver(binding)

	// Echo anything we hear back to the first matching output, if any.
	if output, err := router.FindOutput(query); err == nil {
		if err := router.Send(output, []byte{0x90, 0x40, 0x7F}, contracts.TimestampNow); err != nil {
			log.Warn("Test note failed", log.Field().Error("error", err))
		}
	}

	fmt.Println("Listening for MIDI events... Press Ctrl+C to exit.")
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
}
