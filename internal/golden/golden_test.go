// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package golden

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorpus(t *testing.T) {
	t.Parallel()

	corpus := Corpus{
		Root:       "testdata",
		Refresh:    "AFMT_REFRESH",
		Extensions: []string{"txt"},
		Outputs: []Output{
			{Extension: "upper"},
			{Extension: "lower"},
		},
	}

	corpus.Run(t, func(t *testing.T, path, text string, outputs []string) {
		outputs[0] = strings.ToUpper(text)
	})
}

func TestDiff(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Diff("a\nb\n", "a\nb\n"))
	assert.Equal(t, `--- want
+++ got
@@ -1,2 +1,2 @@
 a
-b
+c
`, Diff("a\nc\n", "a\nb\n"))
}
