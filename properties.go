package loadbench

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/magiconair/properties"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Properties holds the configuration of a run as plain strings, the way
// YCSB workload files express it.
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

// Add sets key to value, translating snake_case aliases.
func (self Properties) Add(key, value string) {
	self[normalizeKey(key)] = value
}

// Merge copies every entry of other into self, overriding existing ones.
func (self Properties) Merge(other map[string]string) {
	for k, v := range other {
		self.Add(k, v)
	}
}

// Keys returns the property names in lexical order.
func (self Properties) Keys() []string {
	keys := make([]string, 0, len(self))
	for k := range self {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnknownKeys returns, in lexical order, the names without a "." namespace
// that no part of the benchmark reads. They are usually misspelled.
func (self Properties) UnknownKeys() []string {
	ret := make([]string, 0)
	for _, k := range self.Keys() {
		if !strings.Contains(k, ".") && !knownProperties[k] {
			ret = append(ret, k)
		}
	}
	return ret
}

func (self Properties) int64Value(key, defaultValue string) (int64, error) {
	propStr := self.GetDefault(key, defaultValue)
	v, err := strconv.ParseInt(strings.TrimSpace(propStr), 0, 64)
	if err != nil {
		return 0, NewConfigError(key, propStr, errors.New("not an integer"))
	}
	return v, nil
}

func (self Properties) float64Value(key, defaultValue string) (float64, error) {
	propStr := self.GetDefault(key, defaultValue)
	v, err := strconv.ParseFloat(strings.TrimSpace(propStr), 64)
	if err != nil {
		return 0, NewConfigError(key, propStr, errors.New("not a number"))
	}
	return v, nil
}

func (self Properties) boolValue(key, defaultValue string) (bool, error) {
	propStr := self.GetDefault(key, defaultValue)
	v, err := strconv.ParseBool(strings.TrimSpace(propStr))
	if err != nil {
		return false, NewConfigError(key, propStr, errors.New("not a boolean"))
	}
	return v, nil
}

func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if alias, ok := PropertyAliases[strings.ToLower(key)]; ok {
		return alias
	}
	return key
}

// LoadProperties reads a workload file. The format is chosen by extension:
// ".yaml" and ".yml" for YAML, ".toml" for TOML, anything else is read as a
// Java style properties file. Nested tables are flattened with "." between
// the key parts.
func LoadProperties(fileName string) (Properties, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to read workload file %s", fileName)
	}
	props := NewProperties()
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".yaml", ".yml":
		var m map[string]interface{}
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrapf(err, "fail to parse yaml workload file %s", fileName)
		}
		flatten(props, "", m)
	case ".toml":
		var m map[string]interface{}
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, errors.Wrapf(err, "fail to parse toml workload file %s", fileName)
		}
		flatten(props, "", m)
	default:
		p, err := properties.Load(data, properties.UTF8)
		if err != nil {
			return nil, errors.Wrapf(err, "fail to parse workload file %s", fileName)
		}
		props.Merge(p.Map())
	}
	return props, nil
}

func flatten(props Properties, prefix string, m map[string]interface{}) {
	for k, v := range m {
		key := k
		if len(prefix) > 0 {
			key = prefix + "." + k
		}
		switch value := v.(type) {
		case map[string]interface{}:
			flatten(props, key, value)
		case []interface{}:
			parts := make([]string, 0, len(value))
			for _, e := range value {
				parts = append(parts, scalarString(e))
			}
			props.Add(key, strings.Join(parts, ","))
		default:
			props.Add(key, scalarString(value))
		}
	}
}

func scalarString(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}
