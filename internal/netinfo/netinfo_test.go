package netinfo

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const netshOutput = "\r\nThere is 1 interface on the system:\r\n\r\n" +
	"    Name                   : Wi-Fi\r\n" +
	"    Description            : Intel(R) Wi-Fi 6 AX201 160MHz\r\n" +
	"    State                  : connected\r\n" +
	"    SSID                   : Mayank\r\n" +
	"    BSSID                  : 3c:84:6a:11:22:33\r\n" +
	"    Network type           : Infrastructure\r\n"

func TestParseNetsh(t *testing.T) {
	ssid, ok := ParseNetsh(netshOutput)
	if !ok || ssid != "Mayank" {
		t.Fatalf("ParseNetsh = %q, %v", ssid, ok)
	}

	if _, ok := ParseNetsh("    State : disconnected\r\n    BSSID : aa:bb\r\n"); ok {
		t.Error("BSSID-only output parsed as SSID")
	}
	if _, ok := ParseNetsh("    SSID : \r\n"); ok {
		t.Error("empty SSID accepted")
	}
}

func TestParseNetshKeepsColonsInName(t *testing.T) {
	ssid, ok := ParseNetsh("    SSID                   : Lab:5G\r\n")
	if !ok || ssid != "Lab:5G" {
		t.Fatalf("ParseNetsh = %q, %v", ssid, ok)
	}
}

func TestParseNmcli(t *testing.T) {
	out := "no:Neighbour\nyes:Campus\\:Lab\nno:Other\n"
	ssid, ok := ParseNmcli(out)
	if !ok || ssid != "Campus:Lab" {
		t.Fatalf("ParseNmcli = %q, %v", ssid, ok)
	}
	if _, ok := ParseNmcli("no:Neighbour\n"); ok {
		t.Error("inactive network reported")
	}
}

func TestParseNetworksetup(t *testing.T) {
	ssid, ok := ParseNetworksetup("Current Wi-Fi Network: Mayank\n")
	if !ok || ssid != "Mayank" {
		t.Fatalf("ParseNetworksetup = %q, %v", ssid, ok)
	}
	if _, ok := ParseNetworksetup("You are not associated with an AirPort network.\n"); ok {
		t.Error("unassociated output parsed")
	}
}

func TestCommandProberRunsPlatformTool(t *testing.T) {
	var called []string
	run := func(_ context.Context, name string, args ...string) ([]byte, error) {
		called = append(called, name+" "+strings.Join(args, " "))
		return []byte(netshOutput), nil
	}
	p := NewCommandProberFor("windows", run)

	ssid, err := p.SSID(context.Background())
	if err != nil || ssid != "Mayank" {
		t.Fatalf("SSID = %q, %v", ssid, err)
	}
	if len(called) != 1 || called[0] != "netsh wlan show interfaces" {
		t.Errorf("ran %v", called)
	}
}

func TestCommandProberErrors(t *testing.T) {
	failing := func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}
	if _, err := NewCommandProberFor("linux", failing).SSID(context.Background()); err == nil {
		t.Error("tool failure not reported")
	}

	empty := func(context.Context, string, ...string) ([]byte, error) { return []byte("no:x\n"), nil }
	if _, err := NewCommandProberFor("linux", empty).SSID(context.Background()); !errors.Is(err, ErrNoSSID) {
		t.Errorf("err = %v, want ErrNoSSID", err)
	}

	if _, err := NewCommandProberFor("plan9", empty).SSID(context.Background()); err == nil {
		t.Error("unsupported OS accepted")
	}
}

func TestStatic(t *testing.T) {
	if ssid, err := Static("Lab").SSID(context.Background()); err != nil || ssid != "Lab" {
		t.Errorf("Static = %q, %v", ssid, err)
	}
	if _, err := Static("").SSID(context.Background()); !errors.Is(err, ErrNoSSID) {
		t.Errorf("empty Static err = %v", err)
	}
}
