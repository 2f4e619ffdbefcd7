package dialog

import (
	"strings"
	"time"
)

// State is "<flow>:<step>"; StateIdle means no flow is open.
type State string

const (
	StateIdle State = "idle"

	// Смещение UTC
	StateSetUTCOffset State = "set_utc_offset:offset"

	// Обратная связь
	StateFeedbackText State = "send_feedback:text"

	// Настройка групп
	StateCreateGroupName        State = "create_group:name"
	StateAddMembersSelectGroup  State = "add_members:select_group"
	StateAddMembersMembers      State = "add_members:members"
	StateDeleteGroupSelectGroup State = "delete_group:select_group"
	StateDeleteGroupConfirm     State = "delete_group:confirm"
	StateRemoveMembersSelect    State = "remove_members:select_group"
	StateRemoveMembersMembers   State = "remove_members:members"
	StateAssignRecipientSelect  State = "assign_reports_recipient:select_group"
	StateAssignRecipientUser    State = "assign_reports_recipient:select_recipient"

	// Отчёты
	StateCreateReportSelectGroup State = "create_report:select_group"
	StateCreateReportPickMembers State = "create_report:pick_members"

	// Статистика и выгрузка
	StateStatsSelectGroup State = "get_statistics:select_group"
	StateStatsDateFrom    State = "get_statistics:date_from"
	StateStatsDateTo      State = "get_statistics:date_to"
	StateFileSelectGroup  State = "get_reports_file:select_group"
	StateFileDateFrom     State = "get_reports_file:date_from"
	StateFileDateTo       State = "get_reports_file:date_to"
	StateFileFormat       State = "get_reports_file:file_format"
)

// Flow returns the flow part of the state name.
func (s State) Flow() string {
	flow, _, _ := strings.Cut(string(s), ":")
	return flow
}

// Payload keys
const (
	KeyGroup    = "group"
	KeyMembers  = "members"
	KeyRoster   = "roster" // участники на момент показа кнопок
	KeyDateFrom = "date_from"
	KeyDateTo   = "date_to"
)

// Payload: произвольные данные шага (сериализуются в JSON)
type Payload map[string]any

type Item struct {
	UserID    int64
	State     State
	Payload   Payload
	UpdatedAt time.Time
}

// Idle reports whether no flow is open.
func (i *Item) Idle() bool {
	return i == nil || i.State == StateIdle || i.State == ""
}
