package deviceid

import (
	"net"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// virtualInterfacePrefixes lists interface name prefixes of virtual, VPN,
// bridge or container interfaces. Their addresses come and go with
// software, so they never contribute to the device hash.
var virtualInterfacePrefixes = []string{
	// VPN and tunnel interfaces
	"utun", "tun", "tap", "ipsec", "ppp",
	// Docker and container bridges
	"docker", "br-", "veth", "cni", "flannel",
	// Virtual bridges and switches
	"virbr", "vnet", "vmnet",
	// Thunderbolt bridge (changes with docking state)
	"bridge",
	"lo",
	"wg",
	// Parallels / VirtualBox / VMware
	"vnic", "vboxnet",
}

// interfaceLister returns the host network interfaces.
type interfaceLister func() ([]net.Interface, error)

// collectMACAddresses returns the sorted MAC addresses of the physical
// interfaces that are up.
func collectMACAddresses(list interfaceLister, logger zerolog.Logger) ([]string, error) {
	interfaces, err := list()
	if err != nil {
		return nil, err
	}

	var macs []string

	for _, i := range interfaces {
		if i.Flags&net.FlagLoopback != 0 || len(i.HardwareAddr) == 0 {
			continue
		}

		if i.Flags&net.FlagUp == 0 {
			logger.Debug().Str("interface", i.Name).Msg("skipping interface (not up)")

			continue
		}

		if isVirtualInterface(i.Name) {
			logger.Debug().Str("interface", i.Name).Msg("skipping virtual interface")

			continue
		}

		macs = append(macs, i.HardwareAddr.String())
	}

	if len(macs) == 0 {
		return nil, ErrNotFound
	}

	sort.Strings(macs)

	return macs, nil
}

// isVirtualInterface reports whether the interface name matches a known
// virtual, VPN or bridge prefix.
func isVirtualInterface(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range virtualInterfacePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}

	return false
}
