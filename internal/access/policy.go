// Package access holds the role model and the single policy table that decides
// which role may perform which action.
package access

import "slices"

// Role is the role stored on a profile.
type Role string

const (
	RoleFounder Role = "founder"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleAgent   Role = "agent"
)

// Roles lists every valid role, highest privilege first.
var Roles = []Role{RoleFounder, RoleAdmin, RoleManager, RoleAgent}

// Action names a guarded operation.
type Action string

const (
	ActionLeadViewOwn      Action = "lead.view_own"
	ActionLeadViewAll      Action = "lead.view_all"
	ActionLeadLock         Action = "lead.lock"
	ActionLeadComplete     Action = "lead.complete"
	ActionLeadCreate       Action = "lead.create"
	ActionLeadAssign       Action = "lead.assign"
	ActionLeadTransfer     Action = "lead.transfer"
	ActionLeadRevoke       Action = "lead.revoke"
	ActionLeadRecoverStuck Action = "lead.recover_stuck"
	ActionLeadUpload       Action = "lead.upload"
	ActionLeadExport       Action = "lead.export"
	ActionAnalyticsSelf    Action = "analytics.self"
	ActionAnalyticsTeam    Action = "analytics.team"
	ActionMessagesUse      Action = "messages.use"
	ActionMessagesBcast    Action = "messages.broadcast"
	ActionSMSBulk          Action = "sms.bulk"
	ActionAIEnrich         Action = "ai.enrich"
	ActionAISMSDraft       Action = "ai.sms_draft"
	ActionReportsTrigger   Action = "reports.trigger"
	ActionTeamManage       Action = "team.manage"
)

var agentActions = []Action{
	ActionLeadViewOwn,
	ActionLeadLock,
	ActionLeadComplete,
	ActionLeadCreate,
	ActionAnalyticsSelf,
	ActionMessagesUse,
	ActionAISMSDraft,
}

var managerActions = append(slices.Clone(agentActions),
	ActionLeadAssign,
	ActionLeadTransfer,
	ActionLeadRevoke,
	ActionLeadRecoverStuck,
	ActionLeadUpload,
	ActionLeadExport,
	ActionLeadViewAll,
	ActionAnalyticsTeam,
	ActionMessagesBcast,
	ActionSMSBulk,
	ActionAIEnrich,
	ActionReportsTrigger,
)

var adminActions = append(slices.Clone(managerActions), ActionTeamManage)

// Policy maps roles to the actions they may perform. Founders are allowed
// everything and therefore have no entry.
type Policy struct {
	grants map[Role]map[Action]struct{}
}

// DefaultPolicy returns the built-in role table.
func DefaultPolicy() *Policy {
	p := &Policy{grants: make(map[Role]map[Action]struct{})}
	p.grant(RoleAgent, agentActions...)
	p.grant(RoleManager, managerActions...)
	p.grant(RoleAdmin, adminActions...)
	return p
}

func (p *Policy) grant(role Role, actions ...Action) {
	set, ok := p.grants[role]
	if !ok {
		set = make(map[Action]struct{}, len(actions))
		p.grants[role] = set
	}
	for _, a := range actions {
		set[a] = struct{}{}
	}
}

// Can reports whether role may perform action.
func (p *Policy) Can(role Role, action Action) bool {
	if role == RoleFounder {
		return true
	}
	_, ok := p.grants[role][action]
	return ok
}

// Can checks the default policy.
func Can(role Role, action Action) bool {
	return defaultPolicy.Can(role, action)
}

var defaultPolicy = DefaultPolicy()

// ParseRole converts a stored role string, reporting false for unknown values.
func ParseRole(value string) (Role, bool) {
	r := Role(value)
	if slices.Contains(Roles, r) {
		return r, true
	}
	return "", false
}

// IsElevated reports whether role sees every lead rather than only its own.
func IsElevated(role Role) bool {
	return Can(role, ActionLeadViewAll)
}

// CanGrant reports whether actor may create or promote a member to target.
// Only founders can hand out founder or admin.
func CanGrant(actor, target Role) bool {
	if !Can(actor, ActionTeamManage) {
		return false
	}
	if target == RoleFounder || target == RoleAdmin {
		return actor == RoleFounder
	}
	return true
}

// RoleNames returns the role values as strings, for validators.
func RoleNames() []string {
	names := make([]string, len(Roles))
	for i, r := range Roles {
		names[i] = string(r)
	}
	return names
}
