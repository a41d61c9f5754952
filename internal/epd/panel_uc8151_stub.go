//go:build !(tinygo && (badger2040 || badger2040_w))

package epd

import (
	"errors"

	"hubpanel/internal/config"
)

func openUC8151(config.DisplayConfig) (Panel, error) {
	return nil, errors.New("epd: uc8151 backend requires a tinygo badger2040 build")
}
