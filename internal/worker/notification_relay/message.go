package notification_relay

import (
	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
	"github.com/m04kA/SMC-SeatReservationService/internal/integrations/rabbitmq"
)

func rabbitmqMessage(n *domain.Notification, routingKey string) rabbitmq.Message {
	return rabbitmq.Message{
		MessageID:  n.DedupeKey,
		RoutingKey: routingKey,
		Body:       n.Payload,
		Timestamp:  n.CreatedAt,
	}
}
