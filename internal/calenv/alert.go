package calenv

import "fmt"

// CO2AlertThreshold is the highest CO2 level, in ppm, that does not
// raise a ventilation alert.
const CO2AlertThreshold CO2 = 1000

// AlertFlags tells, for each zone name, if its indicator is raised.
type AlertFlags map[string]bool

// Raised lists the zones with a raised flag, in zones order.
func (f AlertFlags) Raised(zones []Zone) []string {
	var res []string = nil
	for _, z := range zones {
		if f[z.Name] == true {
			res = append(res, z.Name)
		}
	}
	return res
}

// CO2Alert returns true if the reading has a CO2 level above the
// threshold. A missing level never alerts.
func CO2Alert(r SensorReading) bool {
	level, ok := r.CO2.Get()
	return ok == true && level > CO2AlertThreshold
}

// Alert describes a raised ventilation flag for logs and publication.
type Alert struct {
	Zone  string `json:"zone"`
	Level CO2    `json:"level"`
}

func (a Alert) Identifier() string {
	return "ventilation.co2." + a.Zone
}

func (a Alert) Description() string {
	return fmt.Sprintf("CO2 level in %s is %d ppm ( > %d ppm )", a.Zone, a.Level, CO2AlertThreshold)
}
