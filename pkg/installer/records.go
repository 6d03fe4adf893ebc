package installer

import (
	"fmt"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
)

const (
	releaseSecretPrefix = "sh.helm.release."
	releaseSecretOwner  = "helm"
	secretKind          = "Secret"

	eventTimeLayout = "2006-01-02 15:04:05"
)

// danglingReleaseSecret returns the name of the helm release record of releaseName, or ""
// when there is none.
func danglingReleaseSecret(secrets []corev1.Secret, releaseName string) string {
	for _, s := range secrets {
		if s.Kind != secretKind {
			continue
		}

		labels := s.GetLabels()
		if labels["name"] != releaseName || labels["owner"] != releaseSecretOwner {
			continue
		}

		if strings.HasPrefix(s.GetName(), releaseSecretPrefix) {
			return s.GetName()
		}
	}

	return ""
}

// installationEvents formats the events whose object name starts with releaseName,
// ignoring case, and that were last seen after start.
func installationEvents(events []corev1.Event, releaseName string, start time.Time) []string {
	var lines []string

	for _, e := range events {
		if !hasPrefixFold(e.InvolvedObject.Name, releaseName) {
			continue
		}
		if !e.LastTimestamp.Time.After(start) {
			continue
		}

		lines = append(lines, fmt.Sprintf("%s %s: %s", e.LastTimestamp.UTC().Format(eventTimeLayout), e.Reason, e.Message))
	}

	return lines
}

// hasPrefixFold compares case-insensitively. Case variants of a rune can differ in byte
// length, so both sides are folded before comparing.
func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}
