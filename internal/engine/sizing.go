package engine

// contractMultiplier son las acciones que representa un contrato de opción.
const contractMultiplier = 100

// ContractQuantity devuelve floor(maxInvest / (quotedPrice * 100)).
// Un precio no positivo devuelve 0: esas órdenes nunca se envían.
func ContractQuantity(maxInvest, quotedPrice float64) int64 {
	if quotedPrice <= 0 {
		return 0
	}
	qty := maxInvest / (quotedPrice * contractMultiplier)
	if qty < 1 {
		return 0
	}
	return int64(qty)
}
