package gpu

import "testing"

func TestCommandBuffer(t *testing.T) {
	cb := NewCommandBuffer()
	p := Pipeline{ID: 1, Name: "planet"}
	m := Mesh{ID: 3, VertexCount: 8, IndexCount: 36}

	cb.BindPipeline(p)
	cb.BindDescriptorSet(DescriptorSet{ID: 7}, 1)
	cb.BindMesh(m)
	cb.DrawIndexed(m.IndexCount)

	cmds := cb.Commands()
	want := []CommandKind{CmdBindPipeline, CmdBindDescriptorSet, CmdBindMesh, CmdDrawIndexed}
	if len(cmds) != len(want) {
		t.Fatalf("got %d commands, want %d", len(cmds), len(want))
	}
	for i, k := range want {
		if cmds[i].Kind != k {
			t.Errorf("command %d = %s, want %s", i, cmds[i].Kind, k)
		}
	}
	if cmds[1].ImageIndex != 1 || cmds[1].Set.ID != 7 {
		t.Errorf("bind set recorded %+v", cmds[1])
	}
	if cmds[3].IndexCount != 36 {
		t.Errorf("draw count %d, want 36", cmds[3].IndexCount)
	}
	if cb.DrawCount() != 1 {
		t.Errorf("DrawCount = %d, want 1", cb.DrawCount())
	}

	cb.Reset()
	if len(cb.Commands()) != 0 || cb.DrawCount() != 0 {
		t.Error("reset left commands behind")
	}
}

func TestMeshEmpty(t *testing.T) {
	tests := []struct {
		m    Mesh
		want bool
	}{
		{Mesh{}, true},
		{Mesh{ID: 1}, true},
		{Mesh{ID: 0, IndexCount: 6}, true},
		{Mesh{ID: 1, IndexCount: 6}, false},
	}
	for _, tt := range tests {
		if got := tt.m.Empty(); got != tt.want {
			t.Errorf("%+v.Empty() = %v, want %v", tt.m, got, tt.want)
		}
	}
}

func TestCommandKindString(t *testing.T) {
	if CmdDrawIndexed.String() != "draw_indexed" {
		t.Errorf("got %s", CmdDrawIndexed)
	}
	if CommandKind(99).String() != "cmd(99)" {
		t.Errorf("got %s", CommandKind(99))
	}
}
