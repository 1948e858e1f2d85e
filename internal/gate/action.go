package gate

// Action describes the kind of operation a subject wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	// ActionApprove covers state changes that commit money or status: settling payments,
	// converting quotations, changing document status.
	ActionApprove Action = "approve"
	// ActionRun triggers batch work such as the schedule runner.
	ActionRun Action = "run"
)

// Actions lists every action in display order.
var Actions = []Action{ActionView, ActionList, ActionCreate, ActionUpdate, ActionDelete, ActionApprove, ActionRun}
