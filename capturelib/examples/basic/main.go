// ABOUTME: Basic example showing HTML conversion and an extraction job with the capture library
// ABOUTME: Demonstrates minimal configuration and common use cases

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anhbatoichoi/content-capture-universe/capturelib"
)

func main() {
	ctx := context.Background()

	// Example 1: Create a client pointing at a local extraction service
	client, err := capturelib.NewClient(ctx,
		capturelib.WithBaseURL("http://localhost:8081/api"),
		capturelib.WithPollInterval(2*time.Second),
	)
	if err != nil {
		log.Fatal("Failed to create client:", err)
	}
	defer client.Close()

	// Example 2: Convert editor HTML to Markdown
	fmt.Println("=== Converting HTML ===")
	fmt.Print(client.Convert(`<h2>Notes</h2><ul><li>first</li><li><strong>second</strong></li></ul>`))

	// Example 3: Capture a page
	fmt.Println("\n=== Capturing Page ===")
	page, err := client.Capture(ctx, "https://example.com/post",
		`<html><head><title>Post</title></head><body><article><p>Hello</p><img src="/a.png"></article></body></html>`, true)
	if err != nil {
		log.Printf("Error capturing page: %v\n", err)
	} else {
		fmt.Printf("Title: %s\n", page.Title)
		fmt.Printf("Images: %v\n", page.Images)
	}

	// Example 4: Submit an extraction and wait for it
	fmt.Println("\n=== Extracting ===")
	job, err := client.Submit(ctx, "https://example.com/post", "Post", capturelib.SourceStandard)
	if err != nil {
		log.Printf("Error submitting: %v\n", err)
		return
	}
	fmt.Printf("Submitted %s\n", job.ID)

	waitCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	job, err = client.WaitForJob(waitCtx, job.ID)
	if err != nil {
		log.Printf("Stopped waiting: %v\n", err)
		return
	}
	fmt.Printf("Status: %s\n", job.Status)
	if job.Content != "" {
		fmt.Println(job.Content)
	}
	if job.Error != "" {
		fmt.Println("Error:", job.Error)
	}
}
