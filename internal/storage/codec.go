/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"mockboard/internal/domain"
)

// Templates are stored as msgpack blobs in the SQL backends. The JSON field names are
// reused as msgpack keys so a blob reads like the JSON it came from.

func encodeTemplate(t domain.Template) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(t); err != nil {
		return nil, fmt.Errorf("encode template %s: %w", t.ID, err)
	}
	return buf.Bytes(), nil
}

func decodeTemplate(b []byte) (domain.Template, error) {
	var t domain.Template
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	// numbers come back as int64, uint64 or float64 instead of sized ints
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(&t); err != nil {
		return domain.Template{}, fmt.Errorf("decode template: %w", err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if t.Screens == nil {
		t.Screens = []domain.Screen{}
	}
	if t.Elements == nil {
		t.Elements = []domain.Element{}
	}
	return t, nil
}
