package events

import "github.com/hamba/avro/v2"

// Avro schemas of every message exchanged between core and notifier.
// Field names are the wire contract; the Go structs map onto them by tag.

const telegramVerificationCodeSchema = `{
  "type": "record",
  "name": "TelegramVerificationCodeEvent",
  "namespace": "com.dabwish.events.telegram",
  "fields": [
    {"name": "userId", "type": "long"},
    {"name": "telegramUsername", "type": "string"},
    {"name": "verificationCode", "type": "string"}
  ]
}`

const wishNotificationSchema = `{
  "type": "record",
  "name": "WishNotificationEvent",
  "namespace": "com.dabwish.events.notification",
  "fields": [
    {"name": "wishId", "type": "long"},
    {"name": "ownerId", "type": "long"},
    {"name": "ownerName", "type": "string"},
    {"name": "wishTitle", "type": "string"},
    {"name": "subscriberId", "type": "long"},
    {"name": "subscriberTelegramUsername", "type": "string"}
  ]
}`

const wishCreatedSchema = `{
  "type": "record",
  "name": "WishCreatedEvent",
  "namespace": "com.dabwish.events.wish",
  "fields": [
    {"name": "wishId", "type": "long"},
    {"name": "ownerId", "type": "long"},
    {"name": "title", "type": "string"},
    {"name": "description", "type": ["null", "string"], "default": null},
    {"name": "photoUrl", "type": ["null", "string"], "default": null},
    {"name": "price", "type": ["null", "string"], "default": null},
    {"name": "createdAt", "type": "string"}
  ]
}`

const wishUpdatedSchema = `{
  "type": "record",
  "name": "WishUpdatedEvent",
  "namespace": "com.dabwish.events.wish",
  "fields": [
    {"name": "wishId", "type": "long"},
    {"name": "ownerId", "type": "long"},
    {"name": "title", "type": "string"},
    {"name": "description", "type": ["null", "string"], "default": null},
    {"name": "photoUrl", "type": ["null", "string"], "default": null},
    {"name": "price", "type": ["null", "string"], "default": null},
    {"name": "updatedAt", "type": "string"}
  ]
}`

const userCreatedSchema = `{
  "type": "record",
  "name": "UserCreatedEvent",
  "namespace": "com.dabwish.events.user",
  "fields": [
    {"name": "userId", "type": "long"},
    {"name": "name", "type": "string"},
    {"name": "role", "type": "string"},
    {"name": "createdAt", "type": "string"}
  ]
}`

var (
	TelegramVerificationCodeSchema = avro.MustParse(telegramVerificationCodeSchema)
	WishNotificationSchema         = avro.MustParse(wishNotificationSchema)
	WishCreatedSchema              = avro.MustParse(wishCreatedSchema)
	WishUpdatedSchema              = avro.MustParse(wishUpdatedSchema)
	UserCreatedSchema              = avro.MustParse(userCreatedSchema)
)
