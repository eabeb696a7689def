//go:build tinygo

package main

// WARNING: default -scheduler=cores unsupported, compile with -scheduler=tasks set!

import (
	"context"
	"time"

	"github.com/lingzolabs/simpleboot/boot"
	"github.com/lingzolabs/simpleboot/version"
)

func main() {
	time.Sleep(2 * time.Second) // Give time to connect to USB and monitor output.

	ctrl := newController()

	ctrl.Log.Info(version.Banner())
	ctrl.Log.Info("init:complete")

	ctx := context.Background()
	for {
		outcome, err := ctrl.Run(ctx)
		if err != nil {
			ctrl.Log.Error("update cycle failed", "error", err)
		}
		if outcome == boot.OutcomeJumpToApp {
			break
		}
	}

	ctrl.Log.Info("handover: jumping to installed application")
	boot.Handover(ctrl.Layout, ctrl.Port, nil)
}
