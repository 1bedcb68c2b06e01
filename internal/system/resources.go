package system

import (
	"fmt"
	"log"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// framesPerWorker is how many frame buffers one worker keeps alive at
// once: the canvas and the copy taken when saving.
const framesPerWorker = 2

// SuggestWorkers sizes the frame pool from the logical CPU count, capped
// so every worker's buffers of frameBytes fit in half of the available
// memory.
func SuggestWorkers(frameBytes uint64) int {
	cpus, err := cpu.Counts(true)
	if err != nil || cpus < 1 {
		log.Printf("[!] Failed to count CPUs: %v", err)
		cpus = 1
	}

	vm, err := mem.VirtualMemory()
	if err != nil || frameBytes == 0 {
		return cpus
	}
	return workersFor(cpus, vm.Available/2, frameBytes)
}

func workersFor(cpus int, budget, frameBytes uint64) int {
	fit := int(budget / (frameBytes * framesPerWorker))
	if fit < cpus {
		cpus = fit
	}
	if cpus < 1 {
		cpus = 1
	}
	return cpus
}

// MemoryReport describes current system memory use for the performance
// report.
func MemoryReport() string {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return "unavailable"
	}
	return fmt.Sprintf("%.0f MiB available of %.0f MiB (%.1f%% used)",
		float64(vm.Available)/(1<<20), float64(vm.Total)/(1<<20), vm.UsedPercent)
}
