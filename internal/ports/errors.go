package ports

import "errors"

var (
	// ErrUnauthorized indica credenciales rechazadas por el broker. Es un
	// problema sistémico, no por-símbolo: el caller debe escalarlo como
	// alerta crítica en vez de tratarlo como un gap de datos rutinario.
	ErrUnauthorized = errors.New("brokerage rejected credentials")

	// ErrNoBars indica una respuesta correcta pero sin barras para el símbolo.
	// No se reintenta: dentro de un ciclo el símbolo se trata como inactivo.
	ErrNoBars = errors.New("no bars returned for symbol")
)
