package executor

import (
	"testing"

	"rv32shard/pkg/isa"
	"rv32shard/pkg/memory"
	"rv32shard/pkg/program"
	"rv32shard/pkg/record"
)

func rType(op isa.Opcode, rd, rs1, rs2 uint32) isa.Instruction {
	return isa.Instruction{Opcode: op, A: rd, B: rs1, C: rs2}
}

func iType(op isa.Opcode, rd, rs1 uint32, imm int32) isa.Instruction {
	return isa.Instruction{Opcode: op, A: rd, B: rs1, C: uint32(imm)}
}

func sType(op isa.Opcode, rs1, rs2 uint32, imm int32) isa.Instruction {
	return isa.Instruction{Opcode: op, A: rs1, B: rs2, C: uint32(imm)}
}

func bType(op isa.Opcode, rs1, rs2 uint32, imm int32) isa.Instruction {
	return isa.Instruction{Opcode: op, A: rs1, B: rs2, C: uint32(imm)}
}

func uType(op isa.Opcode, rd, imm uint32) isa.Instruction {
	return isa.Instruction{Opcode: op, A: rd, B: imm}
}

func jType(op isa.Opcode, rd uint32, imm int32) isa.Instruction {
	return isa.Instruction{Opcode: op, A: rd, B: uint32(imm)}
}

func ecall() isa.Instruction {
	return isa.Instruction{Opcode: isa.ECALL}
}

// lastWriteTo returns the value of the most recent recorded write to reg's
// memory-mapped address, or 0 if reg was never written.
func lastWriteTo(rec *record.ExecutionRecord, reg uint32) uint32 {
	addr := memory.RegAddr(reg)
	for i := len(rec.CPUEvents) - 1; i >= 0; i-- {
		if a := rec.CPUEvents[i].Access.A; a != nil && a.Addr == addr {
			return a.Value
		}
	}
	return 0
}

// TestAddChain is spec.md §8 scenario 1.
func TestAddChain(t *testing.T) {
	insts := []isa.Instruction{
		iType(isa.ADDI, 29, 0, 5),
		iType(isa.ADDI, 30, 0, 37),
		rType(isa.ADD, 31, 30, 29),
	}
	p := program.New(0, insts, nil, nil)
	rec, err := Execute(p, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := lastWriteTo(rec, 29); got != 5 {
		t.Fatalf("reg[29] = %d, want 5", got)
	}
	if got := lastWriteTo(rec, 30); got != 37 {
		t.Fatalf("reg[30] = %d, want 37", got)
	}
	if got := lastWriteTo(rec, 31); got != 42 {
		t.Fatalf("reg[31] = %d, want 42", got)
	}
	if len(rec.AddEvents) != 3 {
		t.Fatalf("add_events = %d, want 3", len(rec.AddEvents))
	}
	if len(rec.CPUEvents) != 3 {
		t.Fatalf("cpu_events = %d, want 3", len(rec.CPUEvents))
	}
	if rec.PublicValues.NextPC != 12 {
		t.Fatalf("next_pc = %d, want 12", rec.PublicValues.NextPC)
	}
}

// TestSignedShift is spec.md §8 scenario 2.
func TestSignedShift(t *testing.T) {
	insts := []isa.Instruction{
		iType(isa.ADDI, 1, 0, -16),
		iType(isa.SRAI, 2, 1, 2),
	}
	p := program.New(0, insts, nil, nil)
	rec, err := Execute(p, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := lastWriteTo(rec, 2); got != 0xFFFFFFFC {
		t.Fatalf("reg[2] = %#x, want 0xFFFFFFFC", got)
	}
}

// TestBranchTakenOffset is spec.md §8 scenario 3.
func TestBranchTakenOffset(t *testing.T) {
	insts := []isa.Instruction{
		iType(isa.ADDI, 1, 0, 1),
		iType(isa.ADDI, 2, 0, 1),
		bType(isa.BEQ, 1, 2, 8),
		iType(isa.ADDI, 3, 0, 99),
	}
	p := program.New(0, insts, nil, nil)
	rec, err := Execute(p, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := lastWriteTo(rec, 3); got != 0 {
		t.Fatalf("reg[3] = %d, want 0 (skipped)", got)
	}
}

// TestDivideByZero is spec.md §8 scenario 4.
func TestDivideByZero(t *testing.T) {
	insts := []isa.Instruction{
		iType(isa.ADDI, 1, 0, 7),
		iType(isa.ADDI, 2, 0, 0),
		rType(isa.DIV, 3, 1, 2),
		rType(isa.REM, 4, 1, 2),
	}
	p := program.New(0, insts, nil, nil)
	rec, err := Execute(p, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := lastWriteTo(rec, 3); got != 0xFFFFFFFF {
		t.Fatalf("reg[3] = %#x, want 0xFFFFFFFF", got)
	}
	if got := lastWriteTo(rec, 4); got != 7 {
		t.Fatalf("reg[4] = %d, want 7", got)
	}
}

// TestMemoryRoundTrip is spec.md §8 scenario 5.
func TestMemoryRoundTrip(t *testing.T) {
	// Execute seeds x2 with MemSize after applying the initial memory
	// image, so x2 = 0x1000 is set by an instruction instead.
	insts := []isa.Instruction{
		uType(isa.LUI, 2, 1),
		sType(isa.SW, 2, 1, 0),
		iType(isa.LW, 3, 2, 0),
	}
	initial := []program.MemoryEntry{
		{Addr: memory.RegAddr(1), Value: 0xDEADBEEF},
	}
	p := program.New(0, insts, initial, nil)
	rec, err := Execute(p, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := lastWriteTo(rec, 3); got != 0xDEADBEEF {
		t.Fatalf("reg[3] = %#x, want 0xDEADBEEF", got)
	}

	var dataTouches int
	for _, ev := range rec.CPUEvents {
		if ev.Access.Memory != nil {
			dataTouches++
			if ev.Access.Memory.Value != 0xDEADBEEF {
				t.Fatalf("memory touch value = %#x, want 0xDEADBEEF", ev.Access.Memory.Value)
			}
		}
	}
	if dataTouches != 2 {
		t.Fatalf("data memory touches = %d, want 2", dataTouches)
	}
}

// TestLuiShiftsImmediate verifies lui places its immediate at bit 12 rather
// than using it raw.
func TestLuiShiftsImmediate(t *testing.T) {
	insts := []isa.Instruction{
		uType(isa.LUI, 1, 0xABCDE),
	}
	p := program.New(0, insts, nil, nil)
	rec, err := Execute(p, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got, want := lastWriteTo(rec, 1), uint32(0xABCDE000); got != want {
		t.Fatalf("reg[1] = %#x, want %#x", got, want)
	}
}

// TestAuipcShiftsImmediate verifies auipc adds (imm<<12) to the
// already-advanced pc rather than the raw immediate.
func TestAuipcShiftsImmediate(t *testing.T) {
	insts := []isa.Instruction{
		iType(isa.ADDI, 0, 0, 0), // pad so auipc isn't at pc=0
		uType(isa.AUIPC, 1, 1),
	}
	p := program.New(0, insts, nil, nil)
	rec, err := Execute(p, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// auipc executes at pc=4; the advanced pc (8) + (1<<12).
	if got, want := lastWriteTo(rec, 1), uint32(8+1<<12); got != want {
		t.Fatalf("reg[1] = %#x, want %#x", got, want)
	}
}

// TestMisalignedFetchTraps verifies a jump to a non-4-aligned pc is a fatal
// GuestTrap rather than a silent clean halt.
func TestMisalignedFetchTraps(t *testing.T) {
	insts := []isa.Instruction{
		jType(isa.JAL, 1, 2),
		iType(isa.ADDI, 2, 0, 1),
	}
	p := program.New(0, insts, nil, nil)
	rec, err := Execute(p, Options{})
	fault, ok := err.(*Fault)
	if !ok || fault.Kind != GuestTrap {
		t.Fatalf("err = %v, want GuestTrap fault", err)
	}
	if rec.PublicValues.NextPC != 6 {
		t.Fatalf("next_pc = %d, want 6", rec.PublicValues.NextPC)
	}
}

// TestX0NeverObserved verifies P1: x0 always reads back as zero, even right
// after an instruction explicitly targets it.
func TestX0NeverObserved(t *testing.T) {
	insts := []isa.Instruction{
		iType(isa.ADDI, 0, 0, 123),
		iType(isa.ADDI, 1, 0, 0),
		rType(isa.ADD, 1, 1, 0),
	}
	p := program.New(0, insts, nil, nil)
	rec, err := Execute(p, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := lastWriteTo(rec, 1); got != 0 {
		t.Fatalf("reg[1] = %d, want 0 (x0 must read back zero after being written)", got)
	}
}

// TestAluEmitsByteLookups verifies every executed ALU op contributes to the
// byte-lookup multiset, not just the dedicated event streams.
func TestAluEmitsByteLookups(t *testing.T) {
	insts := []isa.Instruction{
		iType(isa.ADDI, 1, 0, 5),
		rType(isa.AND, 2, 1, 1),
	}
	p := program.New(0, insts, nil, nil)
	rec, err := Execute(p, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	bucket := rec.ByteLookups[rec.CPUEvents[0].Shard]
	if len(bucket) == 0 {
		t.Fatalf("ByteLookups is empty, want entries from ADDI/AND")
	}
}

// TestBudgetExceededHaltsWithPartialRecord exercises Options.MaxCycles.
func TestBudgetExceededHaltsWithPartialRecord(t *testing.T) {
	insts := []isa.Instruction{
		iType(isa.ADDI, 1, 0, 1),
		iType(isa.ADDI, 1, 1, 1),
		iType(isa.ADDI, 1, 1, 1),
	}
	p := program.New(0, insts, nil, nil)
	rec, err := Execute(p, Options{MaxCycles: 2})
	fault, ok := err.(*Fault)
	if !ok || fault.Kind != BudgetExceeded {
		t.Fatalf("err = %v, want BudgetExceeded fault", err)
	}
	if len(rec.CPUEvents) != 2 {
		t.Fatalf("cpu_events = %d, want 2", len(rec.CPUEvents))
	}
}

// TestHaltSyscallStopsCleanlyWithExitCode verifies the HALT ecall
// convention: a7 = HaltSyscall, a0 = exit code, and that no further
// instruction executes past the halt.
func TestHaltSyscallStopsCleanlyWithExitCode(t *testing.T) {
	insts := []isa.Instruction{
		iType(isa.ADDI, regA0, 0, 5),
		iType(isa.ADDI, regA7, 0, int32(HaltSyscall)),
		ecall(),
		iType(isa.ADDI, 9, 0, 999),
	}
	p := program.New(0, insts, nil, nil)
	rec, err := Execute(p, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if rec.PublicValues.ExitCode != 5 {
		t.Fatalf("exit_code = %d, want 5", rec.PublicValues.ExitCode)
	}
	if got := lastWriteTo(rec, 9); got != 0 {
		t.Fatalf("reg[9] = %d, want 0 (instruction after halt must not run)", got)
	}
}

// TestEbreakReturnsTrapFault verifies ebreak halts with a surfaced error
// rather than continuing execution.
func TestEbreakReturnsTrapFault(t *testing.T) {
	insts := []isa.Instruction{
		isa.Instruction{Opcode: isa.EBREAK},
		iType(isa.ADDI, 1, 0, 1),
	}
	p := program.New(0, insts, nil, nil)
	rec, err := Execute(p, Options{})
	if err != ErrEbreak {
		t.Fatalf("err = %v, want ErrEbreak", err)
	}
	if got := lastWriteTo(rec, 1); got != 0 {
		t.Fatalf("reg[1] = %d, want 0 (instruction after ebreak must not run)", got)
	}
}

// TestSplitOptionsDefaultsToOneWhenUnset checks the Options->SplitOptions
// translation used by callers that want to shard the resulting record.
func TestSplitOptionsDefaultsToOneWhenUnset(t *testing.T) {
	var opts Options
	so := opts.SplitOptions()
	if so.Keccak != 1 || so.ShaExtend != 1 || so.ShaCompress != 1 || so.Deferred != 1 || so.Memory != 1 {
		t.Fatalf("SplitOptions() = %+v, want all 1", so)
	}
}
