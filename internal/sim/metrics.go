package sim

// Metrics accumulates counters over the life of a Scheduler. Values
// reset on a level switch.
type Metrics struct {
	Ticks            uint64 `json:"ticks"`
	Spawns           int    `json:"spawns"`
	Removals         int    `json:"removals"`
	TasksAssigned    int    `json:"tasks_assigned"`
	TasksCompleted   int    `json:"tasks_completed"`
	Grants           int    `json:"grants"`
	Denials          int    `json:"denials"`
	ChargerReroutes  int    `json:"charger_reroutes"`
	ChargesCompleted int    `json:"charges_completed"`
	Strandings       int    `json:"strandings"`
}
