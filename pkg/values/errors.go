package values

// FieldErrors tracks validation messages in the grouped shape. A missing
// entry means "no error"; entries are deleted, never blanked, when a field
// becomes valid.
type FieldErrors map[string]map[string]string

// Set records a message for a field, creating the group bucket on demand.
func (e FieldErrors) Set(groupID, fieldID, message string) {
	bucket, ok := e[groupID]
	if !ok {
		bucket = make(map[string]string)
		e[groupID] = bucket
	}
	bucket[fieldID] = message
}

// Clear removes a field's error, dropping the group bucket when it empties
// so Empty stays cheap and accurate.
func (e FieldErrors) Clear(groupID, fieldID string) {
	bucket, ok := e[groupID]
	if !ok {
		return
	}
	delete(bucket, fieldID)
	if len(bucket) == 0 {
		delete(e, groupID)
	}
}

// Get returns the message for a field, if any.
func (e FieldErrors) Get(groupID, fieldID string) (string, bool) {
	bucket, ok := e[groupID]
	if !ok {
		return "", false
	}
	message, ok := bucket[fieldID]
	return message, ok
}

// Empty reports whether no field currently has an error.
func (e FieldErrors) Empty() bool {
	for _, bucket := range e {
		if len(bucket) > 0 {
			return false
		}
	}
	return true
}

// Count returns the number of fields with errors.
func (e FieldErrors) Count() int {
	total := 0
	for _, bucket := range e {
		total += len(bucket)
	}
	return total
}
