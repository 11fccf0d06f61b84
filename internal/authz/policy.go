// Package authz decides whether a principal may act on a content item. The
// policy is pure: it inspects its inputs and never touches storage.
package authz

import "neighborly/internal/models"

// Action is a mutation a principal may attempt on content.
type Action string

// Known actions.
const (
	ActionPin    Action = "pin"
	ActionDelete Action = "delete"
	ActionReport Action = "report"
	ActionVote   Action = "vote"
)

// Resource is the minimal view of a content item the policy needs.
type Resource struct {
	AuthorID uint
	Building string
}

// Authorize returns nil when the principal may perform the action, or a
// Forbidden error explaining the denial. Duplicate-report detection is not
// policy; the report aggregator surfaces it as a Conflict.
func Authorize(principal *models.User, action Action, resource Resource) error {
	switch action {
	case ActionPin:
		if !principal.IsAdmin {
			return models.NewForbiddenError("Only admins can pin content")
		}
	case ActionDelete:
		if !principal.IsAdmin && principal.ID != resource.AuthorID {
			return models.NewForbiddenError("Not authorized to delete this content")
		}
	case ActionReport, ActionVote:
		// Any authenticated principal in the same building.
		if resource.Building != "" && principal.Building != resource.Building {
			return models.NewForbiddenError("Access denied - content from different building")
		}
	default:
		return models.NewForbiddenError("Unknown action")
	}
	return nil
}

// CheckScope denies access to content outside the principal's building.
func CheckScope(principal *models.User, building string) error {
	if building != principal.Building {
		return models.NewForbiddenError("Access denied - content from different building")
	}
	return nil
}
