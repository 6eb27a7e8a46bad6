package gputest

import (
	"image"
	"testing"

	"github.com/Faultbox/orrery/internal/engine/gpu"
	"github.com/Faultbox/orrery/internal/engine/mesh"
)

func TestRoundRobinSlots(t *testing.T) {
	d := New(3)
	var got []int
	for i := 0; i < 7; i++ {
		idx, err := d.AcquireFrameSlot()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, idx)
	}
	want := []int{0, 1, 2, 0, 1, 2, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slots = %v, want %v", got, want)
		}
	}
}

func TestWriteUniformBounds(t *testing.T) {
	d := New(2)
	tex, _ := d.UploadTexture(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	set, err := d.CreateDescriptorSet(tex, 16)
	if err != nil {
		t.Fatal(err)
	}

	if err := d.WriteUniform(set, 1, make([]byte, 16)); err != nil {
		t.Errorf("valid write failed: %v", err)
	}
	if d.Sets[set.ID].Slots[0] != nil {
		t.Error("slot 0 written by a write to slot 1")
	}
	if err := d.WriteUniform(set, 2, make([]byte, 16)); err == nil {
		t.Error("expected out-of-range slot error")
	}
	if err := d.WriteUniform(set, 0, make([]byte, 17)); err == nil {
		t.Error("expected oversize error")
	}
	if err := d.WriteUniform(gpu.DescriptorSet{ID: 999}, 0, nil); err == nil {
		t.Error("expected unknown set error")
	}
}

func TestEmptyMeshUpload(t *testing.T) {
	d := New(1)
	m, err := d.UploadMesh(mesh.Data{})
	if err != nil {
		t.Fatal(err)
	}
	if !m.Empty() {
		t.Error("empty data should give an empty handle")
	}
	m, _ = d.UploadMesh(mesh.SkyboxCube(1))
	if m.Empty() || m.IndexCount != 36 {
		t.Errorf("unexpected handle %+v", m)
	}
}

func TestClosed(t *testing.T) {
	d := New(1)
	d.Close()
	if _, err := d.AcquireFrameSlot(); err != gpu.ErrClosed {
		t.Errorf("got %v, want ErrClosed", err)
	}
}
