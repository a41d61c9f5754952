//go:build !(linux && arm) || tinygo

package epd

import (
	"errors"

	"hubpanel/internal/config"
)

func openSPI(config.DisplayConfig) (Panel, error) {
	return nil, errors.New("epd: spi backend is only available on linux/arm")
}
