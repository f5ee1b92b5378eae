//go:build linux

package pin

import (
	"fmt"

	"github.com/jochenvg/go-udev"
)

// ResolveChipPath turns a configured gpiochip *name* (e.g. "gpiochip0",
// or a board-specific alias set in the chip's udev properties) into the
// `/dev/gpiochipN` device node go-gpiocdev expects, so deployments don't
// have to hardcode a chip's enumeration order.
func ResolveChipPath(name string) (string, error) {
	u := udev.Udev{}
	e := u.NewEnumerate()
	if err := e.AddMatchSubsystem("gpio"); err != nil {
		return "", fmt.Errorf("pin: match gpio subsystem: %w", err)
	}

	devices, err := e.Devices()
	if err != nil {
		return "", fmt.Errorf("pin: enumerate gpio devices: %w", err)
	}

	for _, d := range devices {
		if d.Sysname() == name || d.PropertyValue("ID_GPIO_CHIP_NAME") == name {
			path := d.Devnode()
			if path == "" {
				continue
			}
			return path, nil
		}
	}

	return "", fmt.Errorf("pin: no gpiochip device matching %q", name)
}
