package keyspace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhysicalKey(t *testing.T) {
	assert.Equal(t, "k", PhysicalKey("", "k"))
	assert.Equal(t, "$r1$|k", PhysicalKey("r1", "k"))
	assert.NotEqual(t, PhysicalKey("r1", "k"), PhysicalKey("r2", "k"))
	assert.Equal(t, []string{"$r$|a", "$r$|b"}, PhysicalKeys("r", []string{"a", "b"}))
}

func TestPhysicalTable(t *testing.T) {
	assert.Equal(t, "TCACHE_DEFAULT", PhysicalTable(""))
	assert.Equal(t, "TCACHE_users", PhysicalTable("users"))
	assert.Equal(t, "TCACHE_user_profiles", PhysicalTable("user_profiles"))
	assert.Equal(t, "TCACHE_$55sers", PhysicalTable("Users"))
	assert.Equal(t, "TCACHE_a$3fb", PhysicalTable("a?b"))
	assert.Equal(t, "TCACHE_$64efault", PhysicalTable("default"))
	assert.Equal(t, "TCACHE_$44$45$46$41$55$4c$54", PhysicalTable("DEFAULT"))
}

func TestPhysicalTableNamesDoNotFoldTogether(t *testing.T) {
	regions := []string{"", "default", "DEFAULT", "Default", "users", "Users", "USERS", "a$3fb", "a?b", "x y", "x_y"}
	seen := make(map[string]string, len(regions))
	for _, r := range regions {
		folded := strings.ToLower(PhysicalTable(r))
		prev, dup := seen[folded]
		assert.False(t, dup, "regions %q and %q share table %s", prev, r, folded)
		seen[folded] = r
	}
}

func TestDistinctKeepsFirstOccurrence(t *testing.T) {
	in := []string{"b", "a", "b", "A", "a"}
	assert.Equal(t, []string{"b", "a", "A"}, Distinct(in))
	assert.Equal(t, []string{"b", "a", "b", "A", "a"}, in, "input must not be mutated")
	assert.Empty(t, Distinct(nil))
}

func TestPartition(t *testing.T) {
	s := []int{1, 2, 3, 4, 5, 6, 7}

	parts := Partition(s, 3)
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5, 6}, {7}}, parts)

	assert.Equal(t, [][]int{s}, Partition(s, 0))
	assert.Equal(t, [][]int{s}, Partition(s, 100))
	assert.Nil(t, Partition([]int(nil), 3))

	// appending to a chunk must not clobber the next one
	parts[0] = append(parts[0], 99)
	assert.Equal(t, []int{4, 5, 6}, parts[1])
}
