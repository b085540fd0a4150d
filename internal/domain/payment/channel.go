// Package payment classifies a resolved payment-method id into a sales
// channel: regular counter sales or one of the named delivery services.
package payment

// OtherService is the bucket for delivery sales whose payment method is
// unknown or missing; unmapped ids never fail classification.
const OtherService = "Other"

// Channel is the classification of one sale by payment method.
type Channel struct {
	Delivery bool
	Service  string // set only for delivery channels
}

// Regular is the in-house/counter channel.
var Regular = Channel{}

// DeliveryChannel returns the channel for a named delivery service.
func DeliveryChannel(service string) Channel {
	return Channel{Delivery: true, Service: service}
}

// regularMethodIDs are the payment-method ids the register uses for
// in-house sales (cash, card and their variants).
var regularMethodIDs = map[int64]struct{}{
	0: {}, 1: {}, 2: {}, 3: {}, 4: {}, 5: {},
}

// serviceByMethodID maps payment-method ids to delivery-service names.
// Two ids can share a service (e.g. the two Wolt integrations).
var serviceByMethodID = map[int64]string{
	7:  "Uber Eats",
	8:  "Wolt",
	9:  "Just Eat",
	10: "Glovo CASH",
	11: "Wolt",
	12: "Glovo CARD",
	13: "Bolt",
}

// Classify maps a payment-method id to a channel. The id is nullable
// because a transaction may close without a parseable payment method; nil
// and any unmapped id fall back to Delivery("Other"). Classify is total
// over all inputs and never fails.
func Classify(methodID *int64) Channel {
	if methodID == nil {
		return DeliveryChannel(OtherService)
	}
	if _, ok := regularMethodIDs[*methodID]; ok {
		return Regular
	}
	if service, ok := serviceByMethodID[*methodID]; ok {
		return DeliveryChannel(service)
	}
	return DeliveryChannel(OtherService)
}

// ServiceName returns the delivery-service name a tip on this payment
// method should be attributed to. Regular-channel methods have no service;
// tip attribution for the regular channel is intentionally not modeled.
func ServiceName(methodID *int64) string {
	if methodID == nil {
		return OtherService
	}
	if service, ok := serviceByMethodID[*methodID]; ok {
		return service
	}
	return OtherService
}
