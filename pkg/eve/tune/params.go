// Copyright © 2024 Martin Novak
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tune

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Parameter is a tunable engine option with its starting value and the
// size of the perturbation applied to it.
type Parameter struct {
	Name  string
	Value float64
	Step  float64
}

func (param Parameter) String() string {
	return fmt.Sprintf("%s=%g=%g", param.Name, param.Value, param.Step)
}

// ParseParameter parses a parameter given as name=value=step.
func ParseParameter(str string) (Parameter, error) {
	fields := strings.Split(str, "=")
	if len(fields) != 3 {
		return Parameter{}, fmt.Errorf("tune: parameter %q: expected name=value=step", str)
	}

	return parameter(fields[0], fields[1], fields[2])
}

func parameter(name, value, step string) (Parameter, error) {
	param := Parameter{Name: strings.TrimSpace(name)}
	if param.Name == "" {
		return Parameter{}, errors.New("tune: parameter without a name")
	}

	var err error
	if param.Value, err = strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
		return Parameter{}, fmt.Errorf("tune: parameter %s: value: %w", param.Name, err)
	}

	if param.Step, err = strconv.ParseFloat(strings.TrimSpace(step), 64); err != nil {
		return Parameter{}, fmt.Errorf("tune: parameter %s: step: %w", param.Name, err)
	}

	if param.Step == 0 {
		return Parameter{}, fmt.Errorf("tune: parameter %s: zero step", param.Name)
	}

	return param, nil
}

// LoadParameters reads parameters from a csv file with a header line and
// name,default,step records. Malformed records are logged and skipped.
func LoadParameters(r io.Reader, logger logrus.FieldLogger) ([]Parameter, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}

		return nil, fmt.Errorf("tune: header: %w", err)
	}

	var params []Parameter
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return params, nil
		}

		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.Warnf("Invalid line in tuning file: %v", err)
				continue
			}

			return nil, err
		}

		if len(record) != 3 {
			logger.Warnf("Invalid line in tuning file: %s", strings.Join(record, ","))
			continue
		}

		param, err := parameter(record[0], record[1], record[2])
		if err != nil {
			logger.Warnf("Invalid values in tuning file: %v", err)
			continue
		}

		params = append(params, param)
	}
}
