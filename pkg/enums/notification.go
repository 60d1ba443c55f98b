package enums

import "fmt"

// NotificationKind categorizes user-facing notifications.
type NotificationKind string

const (
	NotificationShareInvite    NotificationKind = "share_invite"
	NotificationShareRevoked   NotificationKind = "share_revoked"
	NotificationBasketComplete NotificationKind = "basket_complete"
	NotificationOrderCreated   NotificationKind = "order_created"
	NotificationOrderAssigned  NotificationKind = "order_assigned"
	NotificationOrderDone      NotificationKind = "order_done"
)

var validNotificationKinds = []NotificationKind{
	NotificationShareInvite,
	NotificationShareRevoked,
	NotificationBasketComplete,
	NotificationOrderCreated,
	NotificationOrderAssigned,
	NotificationOrderDone,
}

// IsValid reports whether the value is a known NotificationKind.
func (k NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw input into a NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
