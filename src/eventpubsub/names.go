package eventpubsub

const (
	ContractPricedEvent = "ContractPricedEvent"
	BatchCompletedEvent = "BatchCompletedEvent"
)
