package orders

const (
	TopicOrderPlaced = "storefront.order.placed"
	TopicOrderStatus = "storefront.order.status"
)

// Partition key = order_id, supaya event satu order tetap berurutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
