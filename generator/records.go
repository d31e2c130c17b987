package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/hhkbp2/go-strftime"
)

// WireTimeFormat is the timestamp format used everywhere on the wire.
const WireTimeFormat = "%Y-%m-%d %H:%M:%S"

// UndeliveredTimestamp marks order lines not yet touched by a Delivery
// transaction.
const UndeliveredTimestamp = "1970-01-01 00:00:00"

type Warehouse struct {
	WID     int64
	Name    string
	Street1 string
	Street2 string
	City    string
	State   string
	Zip     string
	Tax     float64
	Ytd     float64
}

type District struct {
	DID     int64
	WID     int64
	Name    string
	Street1 string
	Street2 string
	City    string
	State   string
	Zip     string
	Tax     float64
	Ytd     float64
	NextOID int64
}

type Customer struct {
	CID         int64
	DID         int64
	WID         int64
	First       string
	Middle      string
	Last        string
	Street1     string
	Street2     string
	City        string
	State       string
	Zip         string
	Phone       string
	Since       string
	Credit      string
	CreditLim   float64
	Discount    float64
	Balance     float64
	YtdPayment  float64
	PaymentCnt  int64
	DeliveryCnt int64
	Data        string
}

type Item struct {
	IID   int64
	ImID  int64
	Name  string
	Price float64
	Data  string
}

type Stock struct {
	IID       int64
	WID       int64
	Quantity  int64
	Dists     [DistrictsPerWarehouse]string
	Ytd       int64
	OrderCnt  int64
	RemoteCnt int64
	Data      string
}

type Order struct {
	OID       int64
	DID       int64
	WID       int64
	CID       int64
	EntryD    string
	CarrierID int64
	OlCnt     int64
	AllLocal  int64
}

type OrderLine struct {
	OID       int64
	DID       int64
	WID       int64
	Number    int64
	IID       int64
	SupplyWID int64
	DeliveryD string
	Quantity  int64
	Amount    float64
	DistInfo  string
}

type NewOrder struct {
	OID int64
	DID int64
	WID int64
}

type History struct {
	CID    int64
	CDID   int64
	CWID   int64
	DID    int64
	WID    int64
	Date   string
	Amount float64
	Data   string
}

var (
	populationCities = []string{
		"Springfield", "Rivertown", "Oakland", "Madison", "Lincoln", "Franklin",
	}
	populationStates = []string{
		"CA", "NY", "TX", "FL", "IL", "PA", "OH", "GA", "NC", "MI",
	}
	populationFirstNames = []string{
		"John", "Jane", "Bob", "Alice", "Charlie", "Diana", "Edward", "Fiona",
	}
	itemNamePrefixes = []string{
		"Red", "Blue", "Green", "Large", "Small", "Premium", "Standard",
	}
	itemNameNouns = []string{
		"Widget", "Gadget", "Tool", "Device", "Product", "Item",
	}
)

// Population generates the synthetic records of the initial database
// load for a given scale factor, one warehouse batch at a time so the
// loader never holds the full data set in memory.
type Population struct {
	random      *rand.Rand
	scaleFactor int64
}

func NewPopulation(scaleFactor int64, random *rand.Rand) *Population {
	if scaleFactor < 1 {
		scaleFactor = 1
	}
	return &Population{
		random:      random,
		scaleFactor: scaleFactor,
	}
}

func (self *Population) WarehouseCount() int64 {
	return self.scaleFactor
}

func (self *Population) Warehouses() []*Warehouse {
	warehouses := make([]*Warehouse, 0, self.scaleFactor)
	for wID := int64(1); wID <= self.scaleFactor; wID++ {
		warehouses = append(warehouses, &Warehouse{
			WID:     wID,
			Name:    fmt.Sprintf("W%02d", wID),
			Street1: self.streetAddress(),
			Street2: self.streetAddress(),
			City:    self.city(),
			State:   self.state(),
			Zip:     self.zip(),
			Tax:     self.tax(),
			Ytd:     300000.0,
		})
	}
	return warehouses
}

func (self *Population) Districts(wID int64) []*District {
	districts := make([]*District, 0, DistrictsPerWarehouse)
	for dID := int64(1); dID <= DistrictsPerWarehouse; dID++ {
		districts = append(districts, &District{
			DID:     dID,
			WID:     wID,
			Name:    fmt.Sprintf("D%02d", dID),
			Street1: self.streetAddress(),
			Street2: self.streetAddress(),
			City:    self.city(),
			State:   self.state(),
			Zip:     self.zip(),
			Tax:     self.tax(),
			Ytd:     30000.0,
			NextOID: OrdersPerDistrict + 1,
		})
	}
	return districts
}

func (self *Population) Customers(wID, dID int64) []*Customer {
	customers := make([]*Customer, 0, CustomersPerDistrict)
	for cID := int64(1); cID <= CustomersPerDistrict; cID++ {
		credit := "GC"
		if RandomInt(self.random, 0, 100) >= 90 {
			credit = "BC"
		}
		customers = append(customers, &Customer{
			CID:         cID,
			DID:         dID,
			WID:         wID,
			First:       self.firstName(),
			Middle:      "OE",
			Last:        CustomerLastName(cID),
			Street1:     self.streetAddress(),
			Street2:     self.streetAddress(),
			City:        self.city(),
			State:       self.state(),
			Zip:         self.zip(),
			Phone:       self.phone(),
			Since:       self.timestamp(),
			Credit:      credit,
			CreditLim:   50000.0,
			Discount:    self.discount(),
			Balance:     -10.0,
			YtdPayment:  10.0,
			PaymentCnt:  1,
			DeliveryCnt: 0,
			Data:        self.data(50, 300),
		})
	}
	return customers
}

func (self *Population) Items() []*Item {
	items := make([]*Item, 0, ItemsTotal)
	for iID := int64(1); iID <= ItemsTotal; iID++ {
		items = append(items, &Item{
			IID:   iID,
			ImID:  RandomInt(self.random, 1, 10000),
			Name:  self.itemName(),
			Price: self.price(),
			Data:  self.originalData(26, 50),
		})
	}
	return items
}

func (self *Population) Stocks(wID int64) []*Stock {
	stocks := make([]*Stock, 0, ItemsTotal)
	for iID := int64(1); iID <= ItemsTotal; iID++ {
		stock := &Stock{
			IID:      iID,
			WID:      wID,
			Quantity: RandomInt(self.random, 10, 100),
			Data:     self.originalData(26, 50),
		}
		for i := 0; i < DistrictsPerWarehouse; i++ {
			stock.Dists[i] = self.distInfo()
		}
		stocks = append(stocks, stock)
	}
	return stocks
}

func (self *Population) Orders(wID, dID int64) []*Order {
	orders := make([]*Order, 0, OrdersPerDistrict)
	for oID := int64(1); oID <= OrdersPerDistrict; oID++ {
		carrierID := int64(0)
		if oID <= OrdersPerDistrict-NewOrdersPerDistrict {
			carrierID = RandomInt(self.random, MinCarrierID, MaxCarrierID)
		}
		orders = append(orders, &Order{
			OID:       oID,
			DID:       dID,
			WID:       wID,
			CID:       RandomInt(self.random, 1, CustomersPerDistrict),
			EntryD:    self.timestamp(),
			CarrierID: carrierID,
			OlCnt:     10,
			AllLocal:  1,
		})
	}
	return orders
}

func (self *Population) OrderLines(wID, dID int64) []*OrderLine {
	delivered := int64(OrdersPerDistrict - NewOrdersPerDistrict)
	lines := make([]*OrderLine, 0, OrdersPerDistrict*10)
	for oID := int64(1); oID <= OrdersPerDistrict; oID++ {
		for number := int64(1); number <= 10; number++ {
			quantity := RandomInt(self.random, MinQuantity, MaxQuantity)
			deliveryD := UndeliveredTimestamp
			if oID <= delivered {
				deliveryD = self.timestamp()
			}
			lines = append(lines, &OrderLine{
				OID:       oID,
				DID:       dID,
				WID:       wID,
				Number:    number,
				IID:       RandomInt(self.random, 1, ItemsTotal),
				SupplyWID: wID,
				DeliveryD: deliveryD,
				Quantity:  quantity,
				Amount:    float64(quantity) * self.price(),
				DistInfo:  self.distInfo(),
			})
		}
	}
	return lines
}

func (self *Population) NewOrders(wID, dID int64) []*NewOrder {
	first := int64(OrdersPerDistrict - NewOrdersPerDistrict + 1)
	newOrders := make([]*NewOrder, 0, NewOrdersPerDistrict)
	for oID := first; oID <= OrdersPerDistrict; oID++ {
		newOrders = append(newOrders, &NewOrder{
			OID: oID,
			DID: dID,
			WID: wID,
		})
	}
	return newOrders
}

func (self *Population) Histories(wID, dID int64) []*History {
	histories := make([]*History, 0, CustomersPerDistrict)
	for cID := int64(1); cID <= CustomersPerDistrict; cID++ {
		histories = append(histories, &History{
			CID:    cID,
			CDID:   dID,
			CWID:   wID,
			DID:    dID,
			WID:    wID,
			Date:   self.timestamp(),
			Amount: 10.0,
			Data:   "Initial deposit",
		})
	}
	return histories
}

func (self *Population) streetAddress() string {
	return fmt.Sprintf("%d %s St",
		RandomInt(self.random, 1, 9999), RandomString(self.random, 5, uppers))
}

func (self *Population) city() string {
	return populationCities[self.random.Intn(len(populationCities))]
}

func (self *Population) state() string {
	return populationStates[self.random.Intn(len(populationStates))]
}

func (self *Population) zip() string {
	return fmt.Sprintf("%d%d",
		RandomInt(self.random, 10000, 99999), RandomInt(self.random, 1000, 9999))
}

func (self *Population) phone() string {
	return fmt.Sprintf("(%d) %d-%d",
		RandomInt(self.random, 100, 999),
		RandomInt(self.random, 100, 999),
		RandomInt(self.random, 1000, 9999))
}

func (self *Population) firstName() string {
	return populationFirstNames[self.random.Intn(len(populationFirstNames))]
}

func (self *Population) itemName() string {
	return itemNamePrefixes[self.random.Intn(len(itemNamePrefixes))] +
		" " + itemNameNouns[self.random.Intn(len(itemNameNouns))]
}

func (self *Population) tax() float64 {
	return RandomFloat(self.random, 0, 0.2)
}

func (self *Population) discount() float64 {
	return RandomFloat(self.random, 0, 0.5)
}

func (self *Population) price() float64 {
	return RandomFloat(self.random, 1.0, 100.0)
}

func (self *Population) data(minLen, maxLen int64) string {
	return RandomString(self.random, RandomInt(self.random, minLen, maxLen), lettersAndDigits)
}

// originalData is like data but marks roughly 10% of values with the
// literal "ORIGINAL" at a random position, per the TPC-C population
// rules for item and stock blobs.
func (self *Population) originalData(minLen, maxLen int64) string {
	data := self.data(minLen, maxLen)
	if RandomInt(self.random, 0, 100) < 10 {
		pos := RandomInt(self.random, 0, int64(len(data)-8))
		data = data[:pos] + "ORIGINAL" + data[pos+8:]
	}
	return data
}

func (self *Population) distInfo() string {
	return RandomString(self.random, 24, uppersAndDigits)
}

func (self *Population) timestamp() string {
	daysAgo := RandomInt(self.random, 0, 730)
	t := time.Now().AddDate(0, 0, -int(daysAgo))
	return strftime.Format(WireTimeFormat, t)
}
