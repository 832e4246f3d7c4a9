package payments

import "math"

// Split divides an order total between the platform commission and the
// vendor transfer. The commission is ratePercent of the amount rounded
// half-up to the nearest minor unit; the transfer is the remainder.
func Split(amount int64, ratePercent float64) (commission, transfer int64) {
	commission = int64(math.Floor(float64(amount)*ratePercent/100 + 0.5))
	return commission, amount - commission
}
