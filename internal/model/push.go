package model

// SubscriptionKeys are the client keys a push provider needs to encrypt a
// payload for one endpoint.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// Subscription is a browser push endpoint registered with the relay.
// Endpoint is its identity.
type Subscription struct {
	Endpoint       string           `json:"endpoint"`
	ExpirationTime *int64           `json:"expirationTime,omitempty"`
	Keys           SubscriptionKeys `json:"keys"`
}
