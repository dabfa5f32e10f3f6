package access

type Reason string

const (
	ReasonInactive       Reason = "subscription_inactive"
	ReasonExpired        Reason = "subscription_expired"
	ReasonPeriodExpired  Reason = "subscription_period_expired"
	ReasonFeatureMissing Reason = "feature_not_available"
	ReasonAssetLimit     Reason = "asset_limit_reached"
)

// CancelAtPeriodEndNotice is sent in the X-Subscription-Warning header.
const CancelAtPeriodEndNotice = "Subscription will cancel at period end"
