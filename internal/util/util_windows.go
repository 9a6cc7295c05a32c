//go:build windows

package util

import (
	"log/slog"
	"os"
	"slices"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetConsoleWindow = kernel32.NewProc("GetConsoleWindow")
	procFreeConsole      = kernel32.NewProc("FreeConsole")
	procShowWindow       = user32.NewProc("ShowWindow")
)

var terminalHosts = []string{
	"cmd.exe",
	"conhost.exe",
	"powershell.exe",
	"pwsh.exe",
	"windowsterminal.exe",
	"wt.exe",
}

// LaunchedFromDesktop reports whether rcpad was double-clicked in Explorer
// (or has no console at all), in which case the console window only gets in
// the way of the panel.
func LaunchedFromDesktop(logger *slog.Logger) bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	parent := strings.ToLower(parentImageName())
	logger.Debug("console parent", "parent", parent, "console", hwnd != 0)

	if hwnd == 0 {
		return true
	}
	if slices.Contains(terminalHosts, parent) {
		return false
	}
	return parent == "explorer.exe"
}

// HideConsole hides and detaches the console window, if there is one.
func HideConsole(logger *slog.Logger) {
	hwnd, _, _ := procGetConsoleWindow.Call()
	if hwnd == 0 {
		logger.Debug("no console window to hide")
		return
	}
	_, _, _ = procShowWindow.Call(hwnd, windows.SW_HIDE)
	_, _, _ = procFreeConsole.Call()
}

// parentImageName walks a process snapshot twice: once to find our parent's
// PID and once to find its executable name.
func parentImageName() string {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(snap)

	find := func(match func(*windows.ProcessEntry32) bool) (windows.ProcessEntry32, bool) {
		var pe windows.ProcessEntry32
		pe.Size = uint32(unsafe.Sizeof(pe))
		for err := windows.Process32First(snap, &pe); err == nil; err = windows.Process32Next(snap, &pe) {
			if match(&pe) {
				return pe, true
			}
		}
		return pe, false
	}

	self := uint32(os.Getpid())
	me, ok := find(func(pe *windows.ProcessEntry32) bool { return pe.ProcessID == self })
	if !ok || me.ParentProcessID == 0 {
		return ""
	}
	parent, ok := find(func(pe *windows.ProcessEntry32) bool { return pe.ProcessID == me.ParentProcessID })
	if !ok {
		return ""
	}
	return windows.UTF16ToString(parent.ExeFile[:])
}
