// This file is part of Famicore.
//
// Famicore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Famicore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Famicore.  If not, see <https://www.gnu.org/licenses/>.

package curated_test

import (
	"errors"
	"testing"

	"github.com/hazyden/famicore/curated"
	"github.com/hazyden/famicore/test"
)

const testError = "test error: %s"
const testErrorB = "test error B: %s"

func TestIs(t *testing.T) {
	e := curated.Errorf(testError, "foo")
	test.Equate(t, e.Error(), "test error: foo")
	test.ExpectedSuccess(t, curated.Is(e, testError))
	test.ExpectedFailure(t, curated.Is(e, testErrorB))

	p := errors.New("plain error")
	test.ExpectedFailure(t, curated.Is(p, testError))
	test.ExpectedFailure(t, curated.IsAny(p))
	test.ExpectedSuccess(t, curated.IsAny(e))

	test.ExpectedFailure(t, curated.Is(nil, testError))
	test.ExpectedFailure(t, curated.IsAny(nil))
}

func TestHas(t *testing.T) {
	inner := curated.Errorf(testErrorB, "inner")
	outer := curated.Errorf(testError, inner)

	test.ExpectedSuccess(t, curated.Has(outer, testError))
	test.ExpectedSuccess(t, curated.Has(outer, testErrorB))
	test.ExpectedFailure(t, curated.Has(inner, testError))
}

func TestDeduplication(t *testing.T) {
	// adjacent duplicate parts in the message chain are elided
	inner := curated.Errorf("error: %s", "detail")
	outer := curated.Errorf("error: %v", inner)
	test.Equate(t, outer.Error(), "error: detail")
}
