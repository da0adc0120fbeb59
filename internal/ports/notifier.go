package ports

import "context"

// Notifier publica mensajes de estado legibles por humanos.
// Es un sumidero terminal: los fallos del propio notifier se loguean y se
// devuelven como error para que el caller los ignore con un warn, nunca
// escalan más allá.
type Notifier interface {
	// Notify publica un mensaje de estado o trade.
	Notify(ctx context.Context, message string) error

	// NotifyCritical publica una alerta urgente con contexto truncado.
	// err puede ser nil.
	NotifyCritical(ctx context.Context, title string, err error) error
}
