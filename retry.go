package tpcc

import (
	"context"
	"strings"
	"time"
)

const (
	txRetryLimit       = 3
	shortRetryDelay    = 100 * time.Millisecond
	longRetryDelay     = 500 * time.Millisecond
	softExecutionLimit = 60 * time.Second
)

// IsContentionError reports whether an error looks like lock
// contention on the server. The protocol carries no structured error
// codes so the classification goes by message text.
func IsContentionError(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "deadlock") ||
		strings.Contains(message, "timeout") ||
		strings.Contains(message, "lock")
}

// retryDelay returns the backoff before retry attempt+1, scaling
// linearly with the attempts already made and stretching for
// contention errors.
func retryDelay(err error, attempt int) time.Duration {
	if IsContentionError(err) {
		return longRetryDelay * time.Duration(attempt)
	}
	return shortRetryDelay * time.Duration(attempt)
}

// RunWithRetry executes one transaction of the given type, retrying
// aborted attempts up to txRetryLimit times. The context is checked
// between attempts so a cancelled run gives up instead of sitting
// through the remaining backoffs. The result keeps the timestamp and
// elapsed time of the whole effort, failures included.
func RunWithRetry(
	ctx context.Context,
	tx *Transactions,
	txType TransactionType,
	workerID int) *TransactionResult {

	startTime := time.Now()
	result := &TransactionResult{
		Type:      txType,
		Timestamp: startTime,
		WorkerID:  workerID,
	}

	for attempt := 1; attempt <= txRetryLimit; attempt++ {
		ok, err := tx.Execute(txType)
		if err == nil {
			elapsed := time.Since(startTime)
			if elapsed > softExecutionLimit {
				Warnf("%s transaction took %.2fs, exceeding the %.0fs limit",
					txType, elapsed.Seconds(), softExecutionLimit.Seconds())
			}
			if attempt > 1 {
				Debugf("%s transaction succeeded after %d attempts",
					txType, attempt)
			}
			result.Success = ok
			result.ElapsedTime = elapsed
			return result
		}

		Warnf("%s transaction attempt %d failed: %s", txType, attempt, err)
		if attempt < txRetryLimit {
			if IsContentionError(err) {
				Infof("detected possible lock contention, retrying with longer delay")
			}
			select {
			case <-ctx.Done():
				Debugf("%s transaction abandoned after %d attempts", txType, attempt)
				result.Success = false
				result.ElapsedTime = time.Since(startTime)
				return result
			case <-time.After(retryDelay(err, attempt)):
			}
			continue
		}
		Errorf("%s transaction failed after %d attempts: %s",
			txType, txRetryLimit, err)
	}

	result.Success = false
	result.ElapsedTime = time.Since(startTime)
	return result
}
