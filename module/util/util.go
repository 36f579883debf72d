package util

// WaitError waits for either an error on the error channel or the done
// channel to close. Returns an error if one is received on the error channel,
// otherwise it returns nil.
//
// This handles a race condition where the done channel could have been closed
// as a result of an irrecoverable error being thrown, so that when the scheduler
// yields control back to this goroutine, both channels are available to read
// from. If the done case happens to be chosen at random to proceed instead of
// the error case, then we would return without error, which could result in the
// error being silently swallowed.
func WaitError(errChan <-chan error, done <-chan struct{}) error {
	select {
	case err := <-errChan:
		return err
	case <-done:
		select {
		case err := <-errChan:
			return err
		default:
		}
		return nil
	}
}
