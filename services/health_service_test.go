package services

import (
	"testing"
	"time"
)

func TestCombineStatus(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		candidate string
		exp       string
	}{
		{name: "ok stays ok", current: statusOK, candidate: statusOK, exp: statusOK},
		{name: "degraded wins over ok", current: statusOK, candidate: statusDegraded, exp: statusDegraded},
		{name: "critical wins over degraded", current: statusDegraded, candidate: statusCritical, exp: statusCritical},
		{name: "never downgrades", current: statusCritical, candidate: statusOK, exp: statusCritical},
		{name: "unknown candidate ignored", current: statusDegraded, candidate: "weird", exp: statusDegraded},
		{name: "unknown current treated as ok", current: "weird", candidate: statusDegraded, exp: statusDegraded},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := combineStatus(tc.current, tc.candidate); got != tc.exp {
				t.Fatalf("expected %q, got %q", tc.exp, got)
			}
		})
	}
}

func TestHumanizeDuration(t *testing.T) {
	tests := []struct {
		name  string
		input time.Duration
		exp   string
	}{
		{name: "zero", input: 0, exp: "0s"},
		{name: "seconds only", input: 42 * time.Second, exp: "42s"},
		{name: "minutes and seconds", input: 3*time.Minute + 5*time.Second, exp: "3m 5s"},
		{name: "whole hour skips zero parts", input: 2 * time.Hour, exp: "2h"},
		{name: "days", input: 26*time.Hour + 30*time.Minute, exp: "1d 2h 30m"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := humanizeDuration(tc.input); got != tc.exp {
				t.Fatalf("expected %q, got %q", tc.exp, got)
			}
		})
	}
}
