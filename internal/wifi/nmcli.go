// internal/wifi/nmcli.go
package wifi

import (
	"context"
	"net"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	addressPollInterval = 500 * time.Millisecond
	monitorInterval     = 5 * time.Second
)

// NMDriver drives a Wi-Fi station through NetworkManager's nmcli.
// One association attempt per Connect call; link-health monitoring
// starts after the first address assignment.
type NMDriver struct {
	iface string
	ssid  string
	psk   string

	ev Events

	mu          sync.Mutex
	stopMonitor context.CancelFunc
}

// NewNMDriver builds a driver for ssid on iface. iface may be empty, in
// which case NetworkManager picks the device and address checks scan
// all interfaces.
func NewNMDriver(iface, ssid, psk string) *NMDriver {
	return &NMDriver{iface: iface, ssid: ssid, psk: psk}
}

func (d *NMDriver) Subscribe(ev Events) { d.ev = ev }

// Connect runs one nmcli association attempt asynchronously. The result
// lands on the events sink; a previous monitor goroutine is retired
// first so only one watches the link at a time.
func (d *NMDriver) Connect(ctx context.Context) error {
	d.mu.Lock()
	if d.stopMonitor != nil {
		d.stopMonitor()
		d.stopMonitor = nil
	}
	d.mu.Unlock()

	go d.associate(ctx)
	return nil
}

func (d *NMDriver) associate(ctx context.Context) {
	args := []string{"device", "wifi", "connect", d.ssid}
	if d.psk != "" {
		args = append(args, "password", d.psk)
	}
	if d.iface != "" {
		args = append(args, "ifname", d.iface)
	}

	out, err := exec.CommandContext(ctx, "nmcli", args...).CombinedOutput()
	if err != nil {
		log.Warn().Err(err).Str("ssid", d.ssid).Bytes("output", out).Msg("wifi association failed")
		d.ev.LinkResult(false)
		return
	}

	d.ev.LinkResult(true)

	// DHCP may still be in flight when nmcli returns.
	t := time.NewTicker(addressPollInterval)
	defer t.Stop()
	for {
		if d.hasAddress() {
			d.ev.AddressAssigned()
			d.startMonitor()
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// startMonitor watches for address loss and reports it once.
func (d *NMDriver) startMonitor() {
	ctx, cancel := context.WithCancel(context.Background())

	d.mu.Lock()
	d.stopMonitor = cancel
	d.mu.Unlock()

	go func() {
		t := time.NewTicker(monitorInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if !d.hasAddress() {
					log.Warn().Str("ssid", d.ssid).Msg("wifi link lost")
					d.ev.LinkLost()
					return
				}
			}
		}
	}()
}

// hasAddress reports whether the managed interface (or, with no iface
// configured, any non-loopback interface) holds a global unicast IPv4.
func (d *NMDriver) hasAddress() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}

	for _, iface := range ifaces {
		if d.iface != "" && iface.Name != d.iface {
			continue
		}
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipnet.IP.To4(); ip4 != nil && ip4.IsGlobalUnicast() {
				return true
			}
		}
	}
	return false
}
