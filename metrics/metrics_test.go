/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStore(t *testing.T) {
	okBefore := testutil.ToFloat64(StoreOperations.WithLabelValues("test_op", ResultOK))
	errBefore := testutil.ToFloat64(StoreOperations.WithLabelValues("test_op", ResultError))
	missBefore := testutil.ToFloat64(StoreOperations.WithLabelValues("test_op", ResultMiss))

	ObserveStore("test_op", nil)
	ObserveStore("test_op", errors.New("boom"))
	ObserveStoreMiss("test_op")

	assert.Equal(t, okBefore+1, testutil.ToFloat64(StoreOperations.WithLabelValues("test_op", ResultOK)))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(StoreOperations.WithLabelValues("test_op", ResultError)))
	assert.Equal(t, missBefore+1, testutil.ToFloat64(StoreOperations.WithLabelValues("test_op", ResultMiss)))
}

func TestObserveInvocation(t *testing.T) {
	before := testutil.ToFloat64(Invocations.WithLabelValues("test_outcome"))
	ObserveInvocation("test_outcome", 250*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(Invocations.WithLabelValues("test_outcome")))
}
