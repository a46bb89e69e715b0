package cmd

const apiVersion = "v1"
