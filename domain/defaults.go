package domain

// Defaults collects the values substituted when records omit optional fields.
type Defaults struct {
	Priority     Priority     `yaml:"priority" json:"priority"`
	WindowDays   int          `yaml:"window_days" json:"window_days"`
	BoardColumns []TaskStatus `yaml:"board_columns" json:"board_columns"`
	TicketMax    int          `yaml:"ticket_max" json:"ticket_max"`
}

// DefaultDefaults returns the built-in defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		Priority:     PriorityMedium,
		WindowDays:   7,
		BoardColumns: append([]TaskStatus(nil), TaskStatuses...),
		TicketMax:    5,
	}
}

// Normalize fills zero or invalid fields from DefaultDefaults.
func (d Defaults) Normalize() Defaults {
	base := DefaultDefaults()
	if !d.Priority.Valid() {
		d.Priority = base.Priority
	}
	if d.WindowDays <= 0 {
		d.WindowDays = base.WindowDays
	}
	columns := make([]TaskStatus, 0, len(d.BoardColumns))
	for _, c := range d.BoardColumns {
		if c.Valid() {
			columns = append(columns, c)
		}
	}
	if len(columns) == 0 {
		columns = base.BoardColumns
	}
	d.BoardColumns = columns
	if d.TicketMax < 0 {
		d.TicketMax = base.TicketMax
	}
	return d
}
