package mqtt

import "errors"

var (
	// ErrNoBroker indicates no broker URL was configured
	ErrNoBroker = errors.New("mqtt broker not configured")

	// ErrConnectionFailed indicates the initial broker connection failed
	ErrConnectionFailed = errors.New("mqtt connection failed")

	// ErrPublishFailed indicates a publish was not acknowledged
	ErrPublishFailed = errors.New("mqtt publish failed")

	// ErrInvalidQoS indicates a QoS level above 2
	ErrInvalidQoS = errors.New("invalid mqtt qos")
)
