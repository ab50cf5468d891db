package apps

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/infrastructure/clock"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/dustin/go-humanize"
)

var hardware = []types.HardwareLine{
	{Label: "Processor", Value: "Gemini Quantum Core @ 7.0 GHz"},
	{Label: "Installed RAM", Value: "128 GB (Chrono-RAM)"},
	{Label: "System type", Value: "128-bit Operating System, x128-based processor"},
	{Label: "Pen and Touch", Value: "Neural Interface Support Available"},
}

// About is the system information panel
type About struct {
	clock  clock.Clock
	uptime func() time.Duration
}

func newAbout(clk clock.Clock, uptime func() time.Duration) *About {
	return &About{clock: clk, uptime: uptime}
}

// Info returns the panel content with live process figures
func (a *About) Info() types.SystemInfo {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	now := a.clock.Now()
	booted := now.Add(-a.uptime())

	return types.SystemInfo{
		Product:    "Windows 6.1",
		Edition:    "GMM Alternate Timeline Edition",
		Copyright:  "© 2024 GMM Corporation. All rights reserved.",
		Hardware:   append([]types.HardwareLine(nil), hardware...),
		Activation: "Windows is activated via universal consciousness.",
		Disclaimer: "This operating system is a work of fiction.",
		Uptime:     strings.TrimSpace(humanize.RelTime(booted, now, "", "")),
		BootedAt:   humanize.RelTime(booted, now, "ago", "from now"),
		Memory:     fmt.Sprintf("%s in use of %s reserved", humanize.Bytes(mem.HeapAlloc), humanize.Bytes(mem.Sys)),
		Goroutines: runtime.NumGoroutine(),
	}
}

func (a *About) close() {}
