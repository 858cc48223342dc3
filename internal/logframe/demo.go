package logframe

// Demo format indices used by the simulated target.
const (
	DemoBoot uint64 = iota + 1
	DemoTemperature
	DemoHeartbeat
	DemoOverrun
)

// DemoTable is the table matching the frames the simulated target emits.
func DemoTable() *Table {
	t, err := NewTable(EncodingCBOR, []Entry{
		{Index: DemoBoot, Level: "info", Format: "firmware {} booted"},
		{Index: DemoTemperature, Level: "debug", Format: "temperature = {=f32} C"},
		{Index: DemoHeartbeat, Level: "trace", Format: "heartbeat #{=u32}"},
		{Index: DemoOverrun, Level: "warn", Format: "sensor fifo overrun ({} samples lost)"},
	}, []Location{
		{Index: DemoBoot, File: "src/main.rs", Line: 27},
		{Index: DemoTemperature, File: "src/sensors/temp.rs", Line: 88},
		{Index: DemoHeartbeat, File: "src/main.rs", Line: 64},
		{Index: DemoOverrun, File: "src/sensors/imu.rs", Line: 141},
	})
	if err != nil {
		panic(err)
	}
	return t
}
