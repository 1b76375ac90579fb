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


package stringsx_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkozuchowski/afmt/internal/ext/stringsx"
)

func TestLines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{""}, slices.Collect(stringsx.Lines("")))
	assert.Equal(t, []string{"a", "b", ""}, slices.Collect(stringsx.Lines("a\r\nb\n")))
	assert.Equal(t, []string{"x", "y"}, slices.Collect(stringsx.Split("x, y", ", ")))
}

func TestHasLineBreak(t *testing.T) {
	t.Parallel()

	assert.True(t, stringsx.HasLineBreak("a\nb"))
	assert.True(t, stringsx.HasLineBreak("a\rb"))
	assert.False(t, stringsx.HasLineBreak("ab"))
}

func TestHasBareCR(t *testing.T) {
	t.Parallel()

	assert.False(t, stringsx.HasBareCR(""))
	assert.False(t, stringsx.HasBareCR("a\r\nb\r\n"))
	assert.True(t, stringsx.HasBareCR("a\rb"))
	assert.True(t, stringsx.HasBareCR("a\r\n\r"))
	assert.True(t, stringsx.HasBareCR("\r\r\n"))
}
