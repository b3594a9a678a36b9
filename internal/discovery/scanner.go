// Package discovery finds Elgato Key Lights on the local network, first via
// mDNS and, when that yields nothing, by probing the local subnets on the
// Key Light control port.
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
)

const keyLightPort = 9123

// ScanKeyLights returns the addresses of every Key Light it can find.
// mDNS is the fast path; the subnet probe only runs when mDNS comes up
// empty, since it fires hundreds of short-lived HTTP requests.
func ScanKeyLights(ctx context.Context) []string {
	addrs := scanViaMDNS(ctx)
	log.Printf("[discovery] mDNS found %d Key Light(s)", len(addrs))
	if len(addrs) == 0 {
		addrs = scanViaProbe(ctx)
	}
	sort.Strings(addrs)
	return addrs
}

func scanViaMDNS(ctx context.Context) []string {
	entries := make(chan *mdns.ServiceEntry, 10)
	var addrs []string

	go func() {
		params := &mdns.QueryParam{
			Service:             "_elg._tcp",
			Domain:              "local",
			Timeout:             3 * time.Second,
			Entries:             entries,
			DisableIPv6:         true,
			WantUnicastResponse: true,
		}
		if err := mdns.Query(params); err != nil {
			log.Printf("[discovery] mDNS query error: %v", err)
		}
		close(entries)
	}()

	for entry := range entries {
		if ctx.Err() != nil {
			return addrs
		}
		log.Printf("[discovery] mDNS entry: Name=%s AddrV4=%v Port=%d", entry.Name, entry.AddrV4, entry.Port)
		addr := entry.AddrV4.String()
		if addr == "" || addr == "<nil>" {
			continue
		}
		addrs = append(addrs, addr)
	}
	return addrs
}

func scanViaProbe(ctx context.Context) []string {
	subnets := getLocalSubnets()
	if len(subnets) == 0 {
		log.Println("[discovery] Could not determine local subnets for probe scan")
		return nil
	}

	var addrs []string
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, 50) // limit concurrency

	for _, subnet := range subnets {
		log.Printf("[discovery] Probing subnet %s for Key Lights on port %d", subnet, keyLightPort)
		for _, ip := range expandSubnet(subnet) {
			if ctx.Err() != nil {
				break
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(addr string) {
				defer wg.Done()
				defer func() { <-sem }()

				if isKeyLight(ctx, addr) {
					log.Printf("[discovery] Found Key Light at %s via probe", addr)
					mu.Lock()
					addrs = append(addrs, addr)
					mu.Unlock()
				}
			}(ip)
		}
	}
	wg.Wait()
	return addrs
}

func isKeyLight(ctx context.Context, ip string) bool {
	client := &http.Client{Timeout: 800 * time.Millisecond}
	url := fmt.Sprintf("http://%s:%d/elgato/accessory-info", ip, keyLightPort)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func getLocalSubnets() []string {
	var subnets []string
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP.To4()
			if ip == nil {
				continue
			}
			ones, bits := ipNet.Mask.Size()
			if ones == 0 || bits == 0 || ones > 24 {
				continue
			}
			subnet := fmt.Sprintf("%d.%d.%d", ip[0], ip[1], ip[2])
			subnets = append(subnets, subnet)
		}
	}
	return subnets
}

func expandSubnet(prefix string) []string {
	ips := make([]string, 0, 254)
	for i := 1; i <= 254; i++ {
		ips = append(ips, fmt.Sprintf("%s.%d", prefix, i))
	}
	return ips
}
