package subscription

import (
	"time"
)

// Subscription means SubscriberID follows SubscribedToID
type Subscription struct {
	ID             int64     `db:"id" json:"id"`
	SubscriberID   int64     `db:"subscriber_id" json:"subscriberId"`
	SubscribedToID int64     `db:"subscribed_to_id" json:"subscribedToId"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// Follower is a subscriber together with the fields notifications need
type Follower struct {
	UserID           int64  `db:"user_id"`
	Name             string `db:"name"`
	TelegramUsername string `db:"telegram_username"`
}
