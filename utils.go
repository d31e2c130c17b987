package tpcc

import (
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

type Properties map[string]string

func NewProperties() Properties {
	return make(Properties)
}

func (self Properties) Get(key string) string {
	v, _ := self[key]
	return v
}

func (self Properties) GetDefault(key string, defaultValue string) string {
	if v, ok := self[key]; ok {
		return v
	}
	return defaultValue
}

func (self Properties) Add(key string, value string) {
	self[key] = value
}

func (self Properties) Merge(other map[string]string) {
	for k, v := range other {
		self[k] = v
	}
}

// LoadProperties reads a property file in YAML mapping form
// (name: value per line) and returns its entries.
func LoadProperties(path string) (Properties, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := NewProperties()
	if err = yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func NanosecondToMicrosecond(nano int64) int64 {
	return nano / 1000
}

func NanosecondToMillisecond(nano int64) int64 {
	return nano / 1000 / 1000
}

func SecondToNanosecond(second int64) int64 {
	return second * 1000 * 1000 * 1000
}

// Truncate limits s to at most max characters.
func Truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
