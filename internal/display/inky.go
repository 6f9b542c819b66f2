package display

import (
	"fmt"
	"image"

	"github.com/formicidae-tracker/calenv/internal/calenv"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/inky"
	"periph.io/x/host/v3"
)

// Wiring of the pHAT on the Raspberry Pi header.
const (
	SPIPort  = "SPI0.0"
	DCPin    = "GPIO22"
	ResetPin = "GPIO27"
	BusyPin  = "GPIO17"
)

// Inky shows the dashboard on a Pimoroni Inky HAT.
type Inky struct {
	port   spi.PortCloser
	dev    *inky.Dev
	config DisplayConfig
	logger *logrus.Entry
}

func modelResolution(m inky.Model) (int, int) {
	switch m {
	case inky.WHAT:
		return 400, 300
	case inky.PHAT2:
		return 250, 122
	default:
		return DefaultWidth, DefaultHeight
	}
}

func inkyColour(c Colour) inky.Color {
	switch c {
	case Red:
		return inky.Red
	case Yellow:
		return inky.Yellow
	default:
		return inky.Black
	}
}

func fromInkyColour(c inky.Color) Colour {
	switch c {
	case inky.Red:
		return Red
	case inky.Yellow:
		return Yellow
	default:
		return Black
	}
}

// inkyBorder returns the panel colour closest to the configured
// border.
func inkyBorder(config DisplayConfig) inky.Color {
	switch config.Palette().Index(config.Border) {
	case 0:
		return inky.White
	case 1:
		return inky.Black
	default:
		return inkyColour(config.Colour)
	}
}

// detect reads the HAT EEPROM.
func detect() (*inky.Opts, error) {
	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("could not open I2C bus: %w", err)
	}
	defer bus.Close()
	opts, err := inky.DetectOpts(bus)
	if err != nil {
		return nil, fmt.Errorf("could not detect display: %w", err)
	}
	return opts, nil
}

func pin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown pin %s", name)
	}
	return p, nil
}

// OpenInky initializes the HAT. With Auto the model and colour are
// read from the HAT EEPROM, otherwise a pHAT of the given colour is
// assumed.
func OpenInky(colour Colour) (*Inky, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("could not initialize host: %w", err)
	}

	opts := &inky.Opts{Model: inky.PHAT, ModelColor: inkyColour(colour)}
	if colour == Auto {
		var err error
		if opts, err = detect(); err != nil {
			return nil, err
		}
	}
	width, height := modelResolution(opts.Model)
	config := NewDisplayConfig(fromInkyColour(opts.ModelColor), width, height)
	opts.BorderColor = inkyBorder(config)

	port, err := spireg.Open(SPIPort)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", SPIPort, err)
	}

	pins := make([]gpio.PinIO, 0, 3)
	for _, name := range []string{DCPin, ResetPin, BusyPin} {
		p, err := pin(name)
		if err != nil {
			port.Close()
			return nil, err
		}
		pins = append(pins, p)
	}

	dev, err := inky.New(port, pins[0], pins[1], pins[2], opts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("could not open display: %w", err)
	}

	res := &Inky{
		port:   port,
		dev:    dev,
		config: config,
	}
	res.logger = calenv.NewLogger("display/inky").WithFields(logrus.Fields{
		"colour": res.config.Colour,
		"width":  width,
		"height": height,
	})
	res.logger.Debug("display opened")
	return res, nil
}

func (d *Inky) Config() DisplayConfig {
	return d.config
}

// Show refreshes the panel, which takes several seconds on a three
// colour panel.
func (d *Inky) Show(img image.Image) error {
	d.dev.SetBorder(inkyBorder(d.config))
	if err := d.dev.Draw(d.dev.Bounds(), img, img.Bounds().Min); err != nil {
		return fmt.Errorf("could not refresh display: %w", err)
	}
	d.logger.Info("display refreshed")
	return nil
}

func (d *Inky) Close() error {
	err := d.dev.Halt()
	if cerr := d.port.Close(); err == nil {
		err = cerr
	}
	return err
}
