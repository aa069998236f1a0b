//go:build tinygo

package main

import (
	"log/slog"
	"machine"
	"time"

	"github.com/openenterprise/an3155boot/bootcfg"
	"github.com/openenterprise/an3155boot/config"
	"github.com/openenterprise/an3155boot/flash"
	"github.com/openenterprise/an3155boot/link"
	"github.com/openenterprise/an3155boot/session"
	"github.com/openenterprise/an3155boot/telemetry"
	"github.com/openenterprise/an3155boot/version"
)

func main() {
	time.Sleep(200 * time.Millisecond) // let the USB/UART monitor attach

	machine.UART0.Configure(machine.UARTConfig{
		BaudRate: config.UARTBaud(),
		TX:       machine.UART_TX_PIN,
		RX:       machine.UART_RX_PIN,
	})

	logger := slog.New(telemetry.NewSlogHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	logger.Info("boot",
		slog.String("version", version.Version),
		slog.String("git_sha", version.GitSHA),
		slog.String("built", version.BuildDate),
	)

	f := flash.FPEC{}
	s := session.NewSession(bootcfg.Active, f, session.HardwareLauncher{}, logger)

	lk := link.NewUARTLink(machine.UART0)
	for !s.RunSelfTest() {
		lk.SendBlock(session.NeedProtectMessage)
	}

	if !s.HasApplication() {
		logger.Warn("boot:no-application")
	}

	for {
		if session.Activate(lk, config.ActivateTimeoutIters()) {
			logger.Info("session:activated")
			s = session.NewSession(bootcfg.Active, f, session.HardwareLauncher{}, logger)
			s.ServeCommands(lk)
			logger.Info("session:idle-timeout")
		}
	}
}
