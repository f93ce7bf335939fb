package store

import (
	"strings"
	"time"

	"babyday-backend/internal/model"
)

// backupStampLayout is fixed-width so lexicographic order is chronological order.
const backupStampLayout = "2006-01-02T15:04:05.000000000Z"

const (
	schedulePrefix = "schedule:"
	templatePrefix = "template:"
	metaPrefix     = "sliceMeta:"
	backupInfix    = ":prev:"
)

func scheduleKey(babyID, dateISO string) string {
	return schedulePrefix + babyID + ":" + dateISO
}

func scheduleBabyPrefix(babyID string) string {
	return schedulePrefix + babyID + ":"
}

func backupPrefix(babyID, dateISO string) string {
	return scheduleKey(babyID, dateISO) + backupInfix
}

func backupKey(babyID, dateISO string, at time.Time) string {
	return backupPrefix(babyID, dateISO) + at.UTC().Format(backupStampLayout)
}

func templateKey(babyID, templateID string) string {
	return templatePrefix + babyID + ":" + templateID
}

func templateBabyPrefix(babyID string) string {
	return templatePrefix + babyID + ":"
}

func metaKey(babyID, sliceID string) string {
	return metaPrefix + babyID + ":" + sliceID
}

func metaBabyPrefix(babyID string) string {
	return metaPrefix + babyID + ":"
}

type idField struct {
	name  string
	value string
}

// checkIDs rejects empty ids and ids containing the key separator.
// Issues are reported in argument order.
func checkIDs(object string, ids ...idField) error {
	var issues []string
	for _, id := range ids {
		if id.value == "" {
			issues = append(issues, id.name+" is required")
		} else if strings.Contains(id.value, ":") {
			issues = append(issues, id.name+" must not contain ':'")
		}
	}
	if len(issues) > 0 {
		return &model.ValidationError{Object: object, Issues: issues}
	}
	return nil
}
