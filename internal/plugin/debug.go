package plugin

// DebugMode toggles debug drawing.
type DebugMode struct {
	Enabled bool
}

func NewDebugMode() *DebugMode {
	return &DebugMode{}
}

func (d *DebugMode) Event(ctx Ctx) bool {
	label := "enable debug mode"
	if d.Enabled {
		label = "disable debug mode"
	}
	if ctx.Input.KeyPressed("d", label) {
		d.Enabled = !d.Enabled
		ctx.Log.Debug("debug mode toggled", "enabled", d.Enabled)
	}
	ctx.Hints.DebugMode = d.Enabled
	return d.Enabled
}
