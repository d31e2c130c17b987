package generator

import (
	"math/rand"
)

// TPC-C cardinality constants.
const (
	DistrictsPerWarehouse = 10
	CustomersPerDistrict  = 3000
	ItemsTotal            = 100000
	OrdersPerDistrict     = 3000
	NewOrdersPerDistrict  = 900

	MinOrderLineCount = 5
	MaxOrderLineCount = 15
	MinQuantity       = 1
	MaxQuantity       = 10
	MinCarrierID      = 1
	MaxCarrierID      = 10
	MinStockThreshold = 10
	MaxStockThreshold = 20

	MinPaymentAmount = 1.0
	MaxPaymentAmount = 5000.0
)

var lastNameSyllables = []string{
	"BAR", "OUGHT", "ABLE", "PRI", "PRES",
	"ESE", "ANTI", "CALLY", "ATION", "EING",
}

// Input picks the randomized inputs of one benchmark worker: entity
// ids, order shapes, payment targets. One instance per worker, backed
// by that worker's own random generator.
type Input struct {
	random      *rand.Rand
	scaleFactor int64
	warehouses  *UniformIntegerGenerator
	districts   *UniformIntegerGenerator
	customers   *UniformIntegerGenerator
	items       *UniformIntegerGenerator
	lineCounts  *UniformIntegerGenerator
	quantities  *UniformIntegerGenerator
	carriers    *UniformIntegerGenerator
	thresholds  *UniformIntegerGenerator
}

func NewInput(scaleFactor int64, random *rand.Rand) *Input {
	if scaleFactor < 1 {
		scaleFactor = 1
	}
	return &Input{
		random:      random,
		scaleFactor: scaleFactor,
		warehouses:  NewUniformIntegerGenerator(1, scaleFactor, random),
		districts:   NewUniformIntegerGenerator(1, DistrictsPerWarehouse, random),
		customers:   NewUniformIntegerGenerator(1, CustomersPerDistrict, random),
		items:       NewUniformIntegerGenerator(1, ItemsTotal, random),
		lineCounts:  NewUniformIntegerGenerator(MinOrderLineCount, MaxOrderLineCount, random),
		quantities:  NewUniformIntegerGenerator(MinQuantity, MaxQuantity, random),
		carriers:    NewUniformIntegerGenerator(MinCarrierID, MaxCarrierID, random),
		thresholds:  NewUniformIntegerGenerator(MinStockThreshold, MaxStockThreshold, random),
	}
}

func (self *Input) ScaleFactor() int64 {
	return self.scaleFactor
}

func (self *Input) RandomWarehouseID() int64 {
	return self.warehouses.NextInt()
}

func (self *Input) RandomDistrictID() int64 {
	return self.districts.NextInt()
}

func (self *Input) RandomCustomerID() int64 {
	return self.customers.NextInt()
}

func (self *Input) RandomItemID() int64 {
	return self.items.NextInt()
}

func (self *Input) RandomOrderLineCount() int64 {
	return self.lineCounts.NextInt()
}

func (self *Input) RandomQuantity() int64 {
	return self.quantities.NextInt()
}

func (self *Input) RandomCarrierID() int64 {
	return self.carriers.NextInt()
}

func (self *Input) RandomStockThreshold() int64 {
	return self.thresholds.NextInt()
}

func (self *Input) RandomPaymentAmount() float64 {
	return RandomFloat(self.random, MinPaymentAmount, MaxPaymentAmount)
}

// SupplyWarehouseID picks the supplying warehouse for one order line:
// 99% the home warehouse, else any warehouse.
func (self *Input) SupplyWarehouseID(homeWID int64) int64 {
	if self.random.Float64() < 0.99 {
		return homeWID
	}
	return self.RandomWarehouseID()
}

// PaymentCustomerLocation picks the customer warehouse and district of
// a payment: 85% the home warehouse (with a 15% chance of a different
// district), else a different warehouse with a random district.
func (self *Input) PaymentCustomerLocation(wID, dID int64) (int64, int64) {
	if RandomInt(self.random, 1, 100) <= 85 {
		cDID := dID
		if RandomInt(self.random, 1, 100) <= 15 {
			cDID = self.RandomDistrictID()
		}
		return wID, cDID
	}
	cWID := self.RandomWarehouseID()
	for self.scaleFactor > 1 && cWID == wID {
		cWID = self.RandomWarehouseID()
	}
	return cWID, self.RandomDistrictID()
}

// SelectByLastName reports whether a payment should look the customer
// up by last name (40%) instead of by id (60%).
func (self *Input) SelectByLastName() bool {
	return self.random.Float64() >= 0.6
}

// CustomerLastName builds the syllable-composed last name for a
// customer number.
func CustomerLastName(number int64) string {
	if number < 1000 {
		return lastNameSyllables[number/100]
	}
	return lastNameSyllables[number%1000/100] + lastNameSyllables[number/1000]
}

func (self *Input) RandomCustomerLastName() string {
	return CustomerLastName(RandomInt(self.random, 0, 999))
}

func (self *Input) NextFloat64() float64 {
	return self.random.Float64()
}
