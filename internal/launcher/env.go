package launcher

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Environment builds the environment for a mod process. With tune set,
// Wayland and GPU variables are added on top of the current environment
// unless the user already set them.
func Environment(tune bool, logger *log.Logger) []string {
	env := os.Environ()
	if !tune {
		return env
	}

	overrides := map[string]string{}
	for k, v := range waylandEnv(logger) {
		overrides[k] = v
	}
	for k, v := range gpuEnv(detectGPUVendor(), logger) {
		overrides[k] = v
	}

	for k, v := range overrides {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		env = append(env, k+"="+v)
	}
	return env
}

// waylandEnv returns variables for running SDL/OpenFL games under Wayland
func waylandEnv(logger *log.Logger) map[string]string {
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	if waylandDisplay == "" {
		logger.Debug("Not running on Wayland")
		return nil
	}

	logger.Debug("Wayland detected, setting up environment", "display", waylandDisplay)

	// SDL2: prefer Wayland, fall back to X11
	// See: https://wiki.libsdl.org/SDL2/FAQUsingSDL
	return map[string]string{
		"SDL_VIDEODRIVER": "wayland,x11",
		"GDK_BACKEND":     "wayland,x11",
	}
}

// gpuEnv returns vendor specific variables
func gpuEnv(vendor string, logger *log.Logger) map[string]string {
	switch vendor {
	case "amd":
		logger.Debug("AMD GPU detected, applying optimizations")

		// Use RADV (Mesa Vulkan driver) for AMD GPUs
		// See: https://wiki.archlinux.org/title/Vulkan#Switching
		return map[string]string{"AMD_VULKAN_ICD": "RADV"}

	case "nvidia":
		logger.Debug("NVIDIA GPU detected, applying optimizations")

		// Required for Wayland on NVIDIA >= 495
		// See: https://wiki.archlinux.org/title/Wayland#Requirements
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			return map[string]string{
				"GBM_BACKEND":               "nvidia-drm",
				"__GLX_VENDOR_LIBRARY_NAME": "nvidia",
			}
		}
		return nil

	default:
		logger.Debug("Using default GPU environment", "vendor", vendor)
		return nil
	}
}

// detectGPUVendor attempts to detect the GPU vendor from /sys
func detectGPUVendor() string {
	vendorPaths := []string{
		"/sys/class/drm/card0/device/vendor",
		"/sys/class/drm/card1/device/vendor",
	}

	for _, path := range vendorPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		switch strings.TrimSpace(string(data)) {
		case "0x1002":
			return "amd"
		case "0x10de":
			return "nvidia"
		case "0x8086":
			return "intel"
		}
	}

	// Fallback: check for loaded kernel modules
	modules, err := os.ReadFile("/proc/modules")
	if err == nil {
		moduleStr := string(modules)
		if strings.Contains(moduleStr, "amdgpu") || strings.Contains(moduleStr, "radeon") {
			return "amd"
		}
		if strings.Contains(moduleStr, "nvidia") {
			return "nvidia"
		}
		if strings.Contains(moduleStr, "i915") {
			return "intel"
		}
	}

	return "unknown"
}
