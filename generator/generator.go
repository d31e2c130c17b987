package generator

import (
	"fmt"
	"math/rand"
)

// Generator generates a sequence of string values, typically used to
// choose what to do next in a workload.
type Generator interface {
	NextString() string
	LastString() string
}

// IntegerGenerator is a generator capable of generating integers and
// strings.
type IntegerGenerator interface {
	Generator
	// NextInt returns the next value as an int. When overriding this
	// method, be sure to call SetLastInt() properly, or the LastString()
	// call won't work.
	NextInt() int64
	LastInt() int64

	Mean() float64
}

// IntegerGeneratorBase is a parent class for all IntegerGenerator
// subclasses.
type IntegerGeneratorBase struct {
	lastInt int64
}

func NewIntegerGeneratorBase(last int64) *IntegerGeneratorBase {
	return &IntegerGeneratorBase{
		lastInt: last,
	}
}

// SetLastInt sets the last value to be generated. IntegerGenerator
// subclasses must use this call to properly set the last int value, or
// the LastString() and LastInt() calls won't work.
func (self *IntegerGeneratorBase) SetLastInt(value int64) {
	self.lastInt = value
}

// NextString generates the next string in the distribution.
func (self *IntegerGeneratorBase) NextString(g IntegerGenerator) string {
	return fmt.Sprintf("%d", g.NextInt())
}

func (self *IntegerGeneratorBase) LastInt() int64 {
	return self.lastInt
}

func (self *IntegerGeneratorBase) LastString() string {
	return fmt.Sprintf("%d", self.LastInt())
}

// UniformIntegerGenerator generates integers randomly uniform from an
// inclusive interval.
type UniformIntegerGenerator struct {
	*IntegerGeneratorBase
	lowerBound int64
	upperBound int64
	random     *rand.Rand
}

func NewUniformIntegerGenerator(lowerBound, upperBound int64, random *rand.Rand) *UniformIntegerGenerator {
	return &UniformIntegerGenerator{
		IntegerGeneratorBase: NewIntegerGeneratorBase(lowerBound - 1),
		lowerBound:           lowerBound,
		upperBound:           upperBound,
		random:               random,
	}
}

func (self *UniformIntegerGenerator) NextInt() int64 {
	ret := self.lowerBound + self.random.Int63n(self.upperBound-self.lowerBound+1)
	self.SetLastInt(ret)
	return ret
}

func (self *UniformIntegerGenerator) NextString() string {
	return self.IntegerGeneratorBase.NextString(self)
}

func (self *UniformIntegerGenerator) Mean() float64 {
	return float64(self.lowerBound+self.upperBound) / 2.0
}

type Pair struct {
	Weight float64
	Value  string
}

// DiscreteGenerator returns one of a discrete set of values according
// to their relative weights.
type DiscreteGenerator struct {
	values    []*Pair
	lastValue string
	random    *rand.Rand
}

func NewDiscreteGenerator(random *rand.Rand) *DiscreteGenerator {
	return &DiscreteGenerator{
		values: make([]*Pair, 0),
		random: random,
	}
}

func (self *DiscreteGenerator) NextString() string {
	var sum float64
	for _, p := range self.values {
		sum += p.Weight
	}

	value := self.random.Float64()

	for _, p := range self.values {
		v := p.Weight / sum
		if value < v {
			self.lastValue = p.Value
			return p.Value
		}
		value -= v
	}
	// rounding may leave a sliver past the last bucket
	last := self.values[len(self.values)-1].Value
	self.lastValue = last
	return last
}

func (self *DiscreteGenerator) LastString() string {
	if len(self.lastValue) == 0 {
		self.lastValue = self.NextString()
	}
	return self.lastValue
}

func (self *DiscreteGenerator) AddValue(weight float64, value string) {
	self.values = append(self.values, &Pair{
		Weight: weight,
		Value:  value,
	})
}
