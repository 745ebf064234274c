package usecase

import (
	"testing"
)

func TestExtractSearchQuery(t *testing.T) {
	testCases := []struct {
		name      string
		utterance string
		want      string
	}{
		{
			name:      "carikan with phrase",
			utterance: "tolong carikan kacamata hitam",
			want:      "kacamata hitam",
		},
		{
			name:      "no trigger echoes original",
			utterance: "halo apa kabar",
			want:      "halo apa kabar",
		},
		{
			name:      "cari with filler dong",
			utterance: "cari dong sepatu lari",
			want:      "sepatu lari",
		},
		{
			name:      "carikan produk",
			utterance: "Carikan produk Tas Ransel",
			want:      "tas ransel",
		},
		{
			name:      "cari untuk",
			utterance: "aku mau cari untuk hadiah ulang tahun",
			want:      "hadiah ulang tahun",
		},
		{
			name:      "only one filler is stripped",
			utterance: "cari ya dong topi",
			want:      "dong topi",
		},
		{
			name:      "filler must be a whole word",
			utterance: "cari kanopi lipat",
			want:      "kanopi lipat",
		},
		{
			name:      "trigger without remainder returns original",
			utterance: "Cari",
			want:      "Cari",
		},
		{
			name:      "only filler after trigger returns original",
			utterance: "carikan dong",
			want:      "carikan dong",
		},
		{
			name:      "mencari is not a trigger word",
			utterance: "saya mencari jaket",
			want:      "saya mencari jaket",
		},
		{
			name:      "extra whitespace is trimmed",
			utterance: "cari    headset gaming   ",
			want:      "headset gaming",
		},
		{
			name:      "empty utterance",
			utterance: "",
			want:      "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractSearchQuery(tc.utterance)
			if got != tc.want {
				t.Errorf("ExtractSearchQuery(%q) = %q, want %q", tc.utterance, got, tc.want)
			}
		})
	}
}

func TestHasSearchIntent(t *testing.T) {
	testCases := []struct {
		utterance string
		want      bool
	}{
		{"cari kacamata", true},
		{"Saya BUTUH charger", true},
		{"pengen beli sepatu", true},
		{"berapa harga topi", true},
		{"nyari tas dong", true},
		{"halo apa kabar", false},
		{"", false},
	}

	for _, tc := range testCases {
		if got := HasSearchIntent(tc.utterance); got != tc.want {
			t.Errorf("HasSearchIntent(%q) = %v, want %v", tc.utterance, got, tc.want)
		}
	}
}

func TestIsGreeting(t *testing.T) {
	testCases := []struct {
		utterance string
		want      bool
	}{
		{"Halo", true},
		{"hai asisten", true},
		{"selamat pagi", true},
		{"terima kasih", false},
	}

	for _, tc := range testCases {
		if got := IsGreeting(tc.utterance); got != tc.want {
			t.Errorf("IsGreeting(%q) = %v, want %v", tc.utterance, got, tc.want)
		}
	}
}
