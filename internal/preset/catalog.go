package preset

import "fmt"

// Catalog holds the three ordered preset rows offered to the user.
type Catalog struct {
	Hours   []string `yaml:"hours"`
	Minutes []string `yaml:"minutes"`
	Seconds []string `yaml:"seconds"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		Hours:   []string{"0.6 hour", "0.7 hour", "0.8 hour", "0.9 hour", "1.0 hour", "1.1 hour", "1.2 hour"},
		Minutes: []string{"1 min", "5 min", "10 min", "15 min", "20 min", "25 min", "30 min"},
		Seconds: []string{"10 sec", "20 sec", "30 sec", "40 sec", "50 sec", "60 sec"},
	}
}

// Rows returns the hour, minute and second rows as presets, skipping empty
// rows.
func (c Catalog) Rows() [][]Preset {
	var rows [][]Preset
	for _, labels := range [][]string{c.Hours, c.Minutes, c.Seconds} {
		if len(labels) == 0 {
			continue
		}
		row := make([]Preset, len(labels))
		for i, label := range labels {
			row[i] = FromLabel(label)
		}
		rows = append(rows, row)
	}
	return rows
}

// Find returns the catalog preset with the given label.
func (c Catalog) Find(label string) (Preset, bool) {
	for _, row := range c.Rows() {
		for _, p := range row {
			if p.Label == label {
				return p, true
			}
		}
	}
	return Preset{}, false
}

// Validate checks that every label resolves and sits in the row of its unit.
func (c Catalog) Validate() error {
	rows := []struct {
		unit   Unit
		labels []string
	}{
		{Hour, c.Hours},
		{Minute, c.Minutes},
		{Second, c.Seconds},
	}
	total := 0
	for _, row := range rows {
		for _, label := range row.labels {
			p := FromLabel(label)
			if p.Unit != row.unit {
				return fmt.Errorf("preset %q listed under %s", label, row.unit)
			}
			if _, _, err := p.Seconds(); err != nil {
				return err
			}
			total++
		}
	}
	if total == 0 {
		return fmt.Errorf("preset catalog is empty")
	}
	return nil
}
