// README: Fare rate definition per vehicle class.
package pricing

import "swiftdrop/internal/modules/order"

type Rate struct {
	Vehicle  order.VehicleType
	BaseFare int64
	PerKm    int64
}

// baseFare applies to every vehicle class.
const baseFare = 20

// defaultRates is the built-in per-km table; a row in the rates table
// overrides it per vehicle class.
var defaultRates = map[order.VehicleType]int64{
	order.VehicleBike:         5,
	order.VehicleAuto:         10,
	order.VehicleCarPremium:   20,
	order.VehicleLogisticsVan: 35,
}
