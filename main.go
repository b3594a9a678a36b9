package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chromaflow/internal/device/atmoorb"
	"chromaflow/internal/device/elgato"
	"chromaflow/internal/device/hue"
	"chromaflow/internal/device/lifx"
	"chromaflow/internal/discovery"
	"chromaflow/internal/frame"
	"chromaflow/internal/orchestrate"
	"chromaflow/internal/store"
)

// Rainbow demo: cycles a hue across every configured device until
// interrupted. Device addresses and tuning come from the config store;
// devices that fail to initialize retry implicitly on later frames.
func main() {
	fps := flag.Int("fps", 20, "frames per second")
	scan := flag.Bool("scan", true, "scan the network for Key Lights on startup")
	flag.Parse()

	st, err := store.New()
	if err != nil {
		log.Fatalf("[main] open config store: %v", err)
	}

	orch := orchestrate.New()
	orch.Register(atmoorb.New("AtmoOrb"))
	orch.Register(lifx.New("LIFX"))
	orch.Register(hue.New("Hue"))

	if *scan {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		for _, addr := range discovery.ScanKeyLights(ctx) {
			d := elgato.New("Key Light " + addr)
			d.Variables().Set(d.AddrKey(), addr)
			orch.Register(d)
		}
		cancel()
	}

	for _, d := range orch.Devices() {
		st.ApplyVariables(d)
	}

	ok := orch.InitializeAll()
	log.Printf("[main] %d of %d device(s) initialized", ok, len(orch.Devices()))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	frameBudget := time.Second / time.Duration(*fps)
	ticker := time.NewTicker(frameBudget)
	defer ticker.Stop()

	log.Printf("[main] running at %d fps, ctrl-c to stop", *fps)
	var hueAngle float64
	for {
		select {
		case <-sig:
			log.Println("[main] shutting down")
			for _, d := range orch.Devices() {
				if err := st.SaveVariables(d); err != nil {
					log.Printf("[main] save %s variables: %v", d.Name(), err)
				}
			}
			orch.ShutdownAll()
			return
		case <-ticker.C:
			hueAngle += 0.8
			if hueAngle >= 360 {
				hueAngle -= 360
			}
			r, g, b := frame.HSBToRGB(hueAngle, 1, 1)
			comp := frame.Composition{frame.ZonePeripheral: frame.RGB(r, g, b)}

			ctx, cancel := context.WithTimeout(context.Background(), frameBudget)
			orch.UpdateAll(ctx, comp, false)
			cancel()
		}
	}
}
